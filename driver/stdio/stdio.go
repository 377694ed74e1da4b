// Package stdio is the raw stdin/stdout console driver (spec.md §6
// "Console driver"): raw-mode terminal I/O, an escape-sequence input
// parser, and SIGWINCH-driven resize events.
//
// Grounded on the teacher's tui/term.go (golang.org/x/term raw mode
// toggling) and tui/input.go (single-reader-goroutine byte channel plus
// a CSI/SS3 escape parser), generalized in two ways: events are typed
// driver.Event values instead of a key-only channel, and the CSI parser
// additionally recognizes SGR mouse reports (ESC [ < b ; x ; y M/m),
// which the teacher's input.go never needed.
package stdio

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/consolewm/consolewm/driver"
)

// Driver is a driver.Driver backed by the process's own stdin/stdout.
type Driver struct {
	mu       sync.Mutex
	out      *bufio.Writer
	oldState *term.State

	events   chan driver.Event
	done     chan struct{}
	resizeCh chan os.Signal

	width, height int
}

// New returns a stdio Driver. Call Start before reading Events.
func New() *Driver {
	return &Driver{
		out:    bufio.NewWriterSize(os.Stdout, 64*1024),
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

func (d *Driver) WriteToConsole(x, y int, ansiText string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "\x1b[%d;%dH", y+1, x+1)
	d.out.WriteString(ansiText)
	return d.out.Flush()
}

func (d *Driver) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out.WriteString("\x1b[2J\x1b[H")
	return d.out.Flush()
}

// Start enters raw mode, enables SGR mouse reporting, and begins the
// input and resize-watching goroutines (spec.md §6 "Start").
func (d *Driver) Start() error {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		w, h = 80, 24
	}
	d.width, d.height = w, h

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to enable raw mode: %v\n", err)
	} else {
		d.oldState = oldState
	}

	d.out.WriteString("\x1b[?25l")   // hide cursor
	d.out.WriteString("\x1b[?1006h") // SGR extended mouse mode
	d.out.WriteString("\x1b[?1000h") // report button press/release
	d.out.Flush()

	rawCh := make(chan byte, 128)
	go readLoop(os.Stdin, rawCh)
	go d.inputLoop(rawCh)

	d.resizeCh = make(chan os.Signal, 1)
	signal.Notify(d.resizeCh, syscall.SIGWINCH)
	go d.resizeLoop()

	return nil
}

// Stop restores the terminal and closes the Events channel.
func (d *Driver) Stop() error {
	if d.resizeCh != nil {
		signal.Stop(d.resizeCh)
	}
	close(d.done)

	d.mu.Lock()
	d.out.WriteString("\x1b[?1000l")
	d.out.WriteString("\x1b[?1006l")
	d.out.WriteString("\x1b[?25h")
	fmt.Fprintf(d.out, "\x1b[%dH", d.height+1)
	d.out.Flush()
	d.mu.Unlock()

	if d.oldState != nil {
		return term.Restore(int(os.Stdin.Fd()), d.oldState)
	}
	return nil
}

func readLoop(f *os.File, rawCh chan<- byte) {
	r := bufio.NewReader(f)
	for {
		b, err := r.ReadByte()
		if err != nil {
			close(rawCh)
			return
		}
		rawCh <- b
	}
}

func (d *Driver) resizeLoop() {
	for {
		select {
		case <-d.done:
			return
		case <-d.resizeCh:
			w, h, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				continue
			}
			d.mu.Lock()
			d.width, d.height = w, h
			d.mu.Unlock()
			d.emit(driver.Event{Kind: driver.EventResize, Width: w, Height: h})
		}
	}
}

func (d *Driver) emit(ev driver.Event) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

func (d *Driver) inputLoop(rawCh <-chan byte) {
	defer close(d.events)
	for {
		select {
		case <-d.done:
			return
		case b, ok := <-rawCh:
			if !ok {
				return
			}
			if b == 0x1b {
				d.processEsc(rawCh)
			} else {
				d.processChar(b)
			}
		}
	}
}

func (d *Driver) processEsc(rawCh <-chan byte) {
	select {
	case next, ok := <-rawCh:
		if !ok {
			d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyEsc}))
			return
		}
		switch next {
		case '[':
			d.parseCSI(rawCh)
		case 'O':
			d.parseSS3(rawCh)
		default:
			d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyChar, Rune: rune(next), Mod: driver.ModAlt}))
		}
	case <-time.After(10 * time.Millisecond):
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyEsc}))
	}
}

func (d *Driver) processChar(b byte) {
	switch {
	case b == 0x0d:
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyEnter}))
	case b == 0x09:
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyTab}))
	case b == 0x08:
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyBackspace}))
	case b == 0x7f:
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyBackspace}))
	case b <= 0x1f:
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyChar, Rune: rune(b + 0x60), Mod: driver.ModCtrl}))
	default:
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyChar, Rune: rune(b)}))
	}
}

const csiTimeout = 50 * time.Millisecond

func readByteTimeout(rawCh <-chan byte) (byte, bool) {
	select {
	case b, ok := <-rawCh:
		return b, ok
	case <-time.After(csiTimeout):
		return 0, false
	}
}

// parseCSI reads a full CSI sequence (ESC [ already consumed) and
// dispatches it as a key or, for the SGR mouse form (ESC [ < ...), a
// mouse event.
func (d *Driver) parseCSI(rawCh <-chan byte) {
	first, ok := readByteTimeout(rawCh)
	if !ok {
		return
	}
	if first == '<' {
		d.parseSGRMouse(rawCh)
		return
	}

	params := []byte{first}
	for {
		b, ok := readByteTimeout(rawCh)
		if !ok {
			return
		}
		if b >= 0x40 && b <= 0x7e {
			d.dispatchCSI(params, b)
			return
		}
		params = append(params, b)
	}
}

func (d *Driver) dispatchCSI(params []byte, final byte) {
	p := string(params)
	switch final {
	case 'A':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowUp}))
	case 'B':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowDown}))
	case 'C':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowRight}))
	case 'D':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowLeft}))
	case 'H':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyHome}))
	case 'F':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyEnd}))
	case '~':
		key := p
		for i := 0; i < len(p); i++ {
			if p[i] == ';' {
				key = p[:i]
				break
			}
		}
		if k, ok := tildeKeys[key]; ok {
			d.emit(keyEvent(driver.KeyEvent{Key: k}))
		}
	}
}

var tildeKeys = map[string]driver.Key{
	"1": driver.KeyHome, "2": driver.KeyInsert, "3": driver.KeyDelete,
	"4": driver.KeyEnd, "5": driver.KeyPgUp, "6": driver.KeyPgDown,
	"15": driver.KeyF5, "17": driver.KeyF6, "18": driver.KeyF7,
	"19": driver.KeyF8, "20": driver.KeyF9, "21": driver.KeyF10,
	"23": driver.KeyF11, "24": driver.KeyF12,
}

func (d *Driver) parseSS3(rawCh <-chan byte) {
	b, ok := readByteTimeout(rawCh)
	if !ok {
		return
	}
	switch b {
	case 'A':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowUp}))
	case 'B':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowDown}))
	case 'C':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowRight}))
	case 'D':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyArrowLeft}))
	case 'P':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyF1}))
	case 'Q':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyF2}))
	case 'R':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyF3}))
	case 'S':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyF4}))
	case 'H':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyHome}))
	case 'F':
		d.emit(keyEvent(driver.KeyEvent{Key: driver.KeyEnd}))
	}
}

// parseSGRMouse reads "b;x;yM" or "b;x;ym" (ESC [ < already consumed).
func (d *Driver) parseSGRMouse(rawCh <-chan byte) {
	var raw []byte
	for {
		b, ok := readByteTimeout(rawCh)
		if !ok {
			return
		}
		if b == 'M' || b == 'm' {
			ev, ok := decodeSGRMouse(raw, b == 'm')
			if ok {
				d.emit(driver.Event{Kind: driver.EventMouse, Mouse: ev})
			}
			return
		}
		raw = append(raw, b)
	}
}

func decodeSGRMouse(raw []byte, released bool) (driver.MouseEvent, bool) {
	var b, x, y, field int
	vals := [3]int{}
	for _, c := range raw {
		if c == ';' {
			vals[field] = b
			field++
			b = 0
			continue
		}
		if c < '0' || c > '9' {
			return driver.MouseEvent{}, false
		}
		b = b*10 + int(c-'0')
	}
	if field != 2 {
		return driver.MouseEvent{}, false
	}
	vals[field] = b
	code, x, y := vals[0], vals[1]-1, vals[2]-1

	ev := driver.MouseEvent{X: x, Y: y}
	wheel := code&0x40 != 0
	switch {
	case wheel && code&1 == 0:
		ev.Action = driver.ActionWheelUp
	case wheel:
		ev.Action = driver.ActionWheelDown
	case released:
		ev.Action = driver.ActionReleased
	default:
		ev.Action = driver.ActionPressed
	}
	switch code & 0x3 {
	case 0:
		ev.Button = driver.Button1
	case 1:
		ev.Button = driver.Button2
	case 2:
		ev.Button = driver.Button3
	}
	if wheel {
		ev.Button = driver.Button4
	}
	return ev, true
}

func keyEvent(k driver.KeyEvent) driver.Event {
	return driver.Event{Kind: driver.EventKey, Key: k}
}
