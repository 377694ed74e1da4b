// Package dispatch implements the Event Dispatcher (spec.md §4.C10):
// keyboard routing (focused control first, then Tab/Shift-Tab/Escape,
// then scroll keys) and mouse routing (hit-test, enter/leave,
// click-target caching, wheel routing to the hit control or the
// window, focus policy, drag).
//
// Grounded on the teacher's tui/input.go dispatch loop (read one event,
// route to the focused widget, fall through to a handful of
// well-known keys) generalized from "one screen, one widget" to
// "many windows, a focus-aware DOM per window" using layout.HitTest
// and control.Control's capability methods instead of a single
// concrete widget type.
package dispatch

import (
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/driver"
	"github.com/consolewm/consolewm/layout"
	"github.com/consolewm/consolewm/wm"
)

// SystemKeyHandler is given a key event before window dispatch and
// returns true if it consumed it as a system-level shortcut (spec.md
// §4.C10 "System-level keys"). The scheduler supplies this.
type SystemKeyHandler func(ev driver.KeyEvent) bool

// Dispatcher routes driver events to the window-state service.
type Dispatcher struct {
	State      *wm.State
	SystemKeys SystemKeyHandler

	lastMouseOver   *layout.Node
	lastMouseWindow wm.ID

	clickTarget   *layout.Node
	clickWindow   wm.ID
	clickX        int
	clickY        int
	clickAt       int64 // monotonic ms, supplied by caller via Now
	Now           func() int64

	dragKind             dragKind
	dragWindow           wm.ID
	dragStartX, dragStartY int
	dragScrollTotal      int
	dragScrollVisible    int
	dragScrollOrigOffset int
}

// dragKind identifies what a border-area mouse-down started dragging
// (spec.md §4.C10 "Drag", SPEC_FULL.md §12 scrollbar/grip supplement).
type dragKind int

const (
	noDrag dragKind = iota
	dragMove
	dragResize
	dragScrollThumb
)

// New returns a Dispatcher bound to state.
func New(state *wm.State, sysKeys SystemKeyHandler, now func() int64) *Dispatcher {
	return &Dispatcher{State: state, SystemKeys: sysKeys, Now: now}
}

// DispatchKey routes a key event: system keys first, then the active
// window.
func (d *Dispatcher) DispatchKey(ev driver.KeyEvent) {
	if d.SystemKeys != nil && d.SystemKeys(ev) {
		return
	}
	id := d.State.Active()
	target := d.State.EffectiveActivationTarget(id)
	w := d.State.Get(target)
	if w == nil {
		return
	}
	d.dispatchKeyToWindow(w, ev)
}

func (d *Dispatcher) dispatchKeyToWindow(w *wm.Window, ev driver.KeyEvent) {
	w.Lock()
	focused := w.LastFocused
	w.Unlock()

	if focused != nil && focused.HasFocus() && focused.IsEnabled() {
		if focused.ProcessKey(ev) {
			return
		}
	}

	switch {
	case ev.Key == driver.KeyTab && ev.Mod&driver.ModShift == 0:
		d.focusNext(w, 1)
	case ev.Key == driver.KeyTab && ev.Mod&driver.ModShift != 0:
		d.focusNext(w, -1)
	case ev.Key == driver.KeyEsc:
		d.handleEscape(w)
	case ev.Key == driver.KeyArrowUp && ev.Mod == driver.ModNone:
		d.scrollBy(w, -1)
	case ev.Key == driver.KeyArrowDown && ev.Mod == driver.ModNone:
		d.scrollBy(w, 1)
	case ev.Key == driver.KeyPgUp:
		d.scrollBy(w, -pageSize(w))
	case ev.Key == driver.KeyPgDown:
		d.scrollBy(w, pageSize(w))
	case ev.Key == driver.KeyHome && ev.Mod&driver.ModCtrl != 0:
		d.scrollTo(w, 0)
	case ev.Key == driver.KeyEnd && ev.Mod&driver.ModCtrl != 0:
		d.scrollTo(w, 1<<30)
	}
}

func pageSize(w *wm.Window) int {
	h := w.Height - 2 - w.TopStickyH - w.BottomStickyH
	if h < 1 {
		return 1
	}
	return h
}

func (d *Dispatcher) scrollBy(w *wm.Window, delta int) {
	w.Lock()
	defer w.Unlock()
	total := contentLineCount(w)
	visible := pageSize(w)
	w.ScrollOffset = layout.ClampScroll(w.ScrollOffset+delta, total, visible)
	w.Flags.IsDirty = true
}

func (d *Dispatcher) scrollTo(w *wm.Window, offset int) {
	w.Lock()
	defer w.Unlock()
	total := contentLineCount(w)
	visible := pageSize(w)
	w.ScrollOffset = layout.ClampScroll(offset, total, visible)
	w.Flags.IsDirty = true
}

func contentLineCount(w *wm.Window) int {
	total := 0
	for _, n := range w.LayoutNodes {
		if bottom := n.Bounds.Y + n.Bounds.H; bottom > total {
			total = bottom
		}
	}
	return total
}

// focusNext moves focus to the next (dir=1) or previous (dir=-1)
// focusable control, wrapping (spec.md scenario S4).
func (d *Dispatcher) focusNext(w *wm.Window, dir int) {
	w.Lock()
	defer w.Unlock()

	flat := layout.Flatten(w.LayoutNodes)
	var focusable []*layout.Node
	for _, n := range flat {
		if n.Control.CanFocus() && n.Control.IsEnabled() {
			focusable = append(focusable, n)
		}
	}
	if len(focusable) == 0 {
		return
	}

	if w.LastFocused == nil && w.EscapedFrom != nil {
		setFocus(w, w.EscapedFrom)
		w.EscapedFrom = nil
		return
	}

	idx := -1
	for i, n := range focusable {
		if n.Control == w.LastFocused {
			idx = i
			break
		}
	}
	next := 0
	if idx >= 0 {
		n := len(focusable)
		next = ((idx+dir)%n + n) % n
	} else if dir < 0 {
		next = len(focusable) - 1
	}
	setFocus(w, focusable[next].Control)
}

func (d *Dispatcher) handleEscape(w *wm.Window) {
	w.Lock()
	defer w.Unlock()
	if w.LastFocused == nil {
		return
	}
	w.LastFocused.SetFocus(false)
	w.EscapedFrom = w.LastFocused
	w.LastFocused = nil
	w.Flags.IsDirty = true
}

// setFocus enforces focus uniqueness (spec.md §8 invariant 4): the
// previous focus target is explicitly cleared before the new one is
// set.
func setFocus(w *wm.Window, c control.Control) {
	if w.LastFocused != nil && w.LastFocused != c {
		w.LastFocused.SetFocus(false)
	}
	c.SetFocus(true)
	w.LastFocused = c
	w.Flags.IsDirty = true
}
