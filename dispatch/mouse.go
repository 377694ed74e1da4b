package dispatch

import (
	"github.com/consolewm/consolewm/driver"
	"github.com/consolewm/consolewm/layout"
	"github.com/consolewm/consolewm/wm"
)

const doubleClickWindowMs = 500

// WindowAtPoint returns the topmost window whose bounds contain
// (x,y), redirected to its deepest active modal descendant if one
// also covers the point (spec.md §4.C10 "WindowQueryHelper.
// GetWindowAtPoint").
func (d *Dispatcher) WindowAtPoint(x, y int) *wm.Window {
	var best *wm.Window
	for _, w := range d.State.Windows() {
		if !w.Bounds().Contains(x, y) {
			continue
		}
		if best == nil || w.Z > best.Z {
			best = w
		}
	}
	if best == nil {
		return nil
	}
	target := d.State.EffectiveActivationTarget(best.ID)
	if target != best.ID {
		if tw := d.State.Get(target); tw != nil && tw.Bounds().Contains(x, y) {
			return tw
		}
	}
	return best
}

// DispatchMouse routes a mouse event translated into window-relative
// coordinates, following spec.md §4.C10's five-step algorithm. A
// border-area press on a movable/resizable/scrollable window starts a
// drag instead of hit-testing into content; while a drag is active,
// every subsequent event is routed to continueDrag regardless of where
// the pointer currently sits, since a fast drag routinely leaves the
// window's bounds.
func (d *Dispatcher) DispatchMouse(ev driver.MouseEvent) {
	if d.dragKind != noDrag {
		d.continueDrag(ev)
		return
	}

	w := d.WindowAtPoint(ev.X, ev.Y)
	if w == nil {
		return
	}
	rx, ry := ev.X-w.Left, ev.Y-w.Top

	if ev.Action == driver.ActionPressed && ev.Button == driver.Button1 {
		if d.tryBeginBorderDrag(w, rx, ry, ev.X, ev.Y) {
			return
		}
	}

	contentOriginX, contentOriginY := 1, 1

	w.Lock()
	cx, cy := rx-contentOriginX, ry-contentOriginY
	hit := layout.HitTest(w.LayoutNodes, cx, cy, w.ScrollOffset)
	w.Unlock()

	d.generateEnterLeave(w, hit)

	switch ev.Action {
	case driver.ActionWheelUp, driver.ActionWheelDown:
		d.bubbleWheel(w, hit, ev)
		return
	case driver.ActionPressed, driver.ActionClicked, driver.ActionDoubleClicked, driver.ActionTripleClicked:
		if ev.Button == driver.Button1 {
			d.applyFocusPolicy(w, hit)
		}
		target := d.resolveClickTarget(w, hit, ev.X, ev.Y)
		if target != nil {
			target.Control.ProcessMouse(ev)
		}
		// target == nil (click on empty space): the event is not
		// delivered to any control.
	default:
		if hit != nil {
			hit.Control.ProcessMouse(ev)
		}
	}
}

func (d *Dispatcher) generateEnterLeave(w *wm.Window, hit *layout.Node) {
	if d.lastMouseOver == hit && d.lastMouseWindow == w.ID {
		return
	}
	if d.lastMouseOver != nil {
		d.lastMouseOver.Control.ProcessMouse(driver.MouseEvent{Action: driver.ActionLeave})
	}
	if hit != nil {
		hit.Control.ProcessMouse(driver.MouseEvent{Action: driver.ActionEnter})
	}
	d.lastMouseOver = hit
	d.lastMouseWindow = w.ID
}

// bubbleWheel gives the hit control first refusal on a wheel event; if
// it doesn't want the mouse (or isn't present), the window scrolls.
// The layout tree already nests containers as node children, so a
// scrollable ancestor further up the DOM than the directly-hit leaf is
// not consulted here — leaf controls that want wheel events (like
// control.Scroll) wrap their scrollable region directly.
func (d *Dispatcher) bubbleWheel(w *wm.Window, hit *layout.Node, ev driver.MouseEvent) {
	if hit != nil && hit.Control.WantsMouse() && hit.Control.ProcessMouse(ev) {
		return
	}
	delta := 1
	if ev.Action == driver.ActionWheelUp {
		delta = -1
	}
	d.scrollBy(w, delta*3)
}

// resolveClickTarget implements the click-target cache (spec.md §8
// invariant 5 / scenario S5): two clicks at the same screen point
// within 500ms resolve to the same target even if the hit-test would
// otherwise differ (e.g. because of an intervening scroll).
func (d *Dispatcher) resolveClickTarget(w *wm.Window, hit *layout.Node, x, y int) *layout.Node {
	now := int64(0)
	if d.Now != nil {
		now = d.Now()
	}
	if d.clickTarget != nil && d.clickWindow == w.ID && d.clickX == x && d.clickY == y && now-d.clickAt < doubleClickWindowMs {
		return d.clickTarget
	}
	d.clickTarget = hit
	d.clickWindow = w.ID
	d.clickX, d.clickY = x, y
	d.clickAt = now
	return hit
}

// applyFocusPolicy centralizes focus changes on a Button1 press/click
// (spec.md §4.C10 step 5): click on empty space clears focus; click on
// a non-focusable-by-mouse control leaves focus untouched; click on a
// focusable control focuses it; anything else clears focus.
func (d *Dispatcher) applyFocusPolicy(w *wm.Window, hit *layout.Node) {
	w.Lock()
	defer w.Unlock()

	if hit == nil {
		clearFocusLocked(w)
		return
	}
	if !hit.Control.CanFocusWithMouse() {
		return
	}
	if !hit.Control.CanFocus() {
		clearFocusLocked(w)
		return
	}
	if w.LastFocused != nil && w.LastFocused != hit.Control {
		w.LastFocused.SetFocus(false)
	}
	hit.Control.SetFocus(true)
	w.LastFocused = hit.Control
	w.Flags.IsDirty = true
}

func clearFocusLocked(w *wm.Window) {
	if w.LastFocused != nil {
		w.LastFocused.SetFocus(false)
		w.LastFocused = nil
		w.Flags.IsDirty = true
	}
}

// BeginDrag starts a border-area drag on w (spec.md §4.C10 "Drag").
func (d *Dispatcher) BeginDrag(w *wm.Window) {
	w.Lock()
	defer w.Unlock()
	w.Flags.IsDragging = true
	w.OriginalLeft, w.OriginalTop = w.Left, w.Top
}

// UpdateDrag moves w by (dx,dy) while a drag is in progress.
func (d *Dispatcher) UpdateDrag(w *wm.Window, dx, dy int) {
	w.Lock()
	defer w.Unlock()
	if !w.Flags.IsDragging {
		return
	}
	w.Left += dx
	w.Top += dy
	w.Flags.IsInvalidated = true
	w.Flags.IsDirty = true
}

// EndDrag clears the dragging flag.
func (d *Dispatcher) EndDrag(w *wm.Window) {
	w.Lock()
	defer w.Unlock()
	w.Flags.IsDragging = false
}

// tryBeginBorderDrag checks whether a Button1 press at window-relative
// (rx,ry) lands on a draggable border region — the bottom-right resize
// grip, a scrollbar track cell, or anywhere else on the border for a
// move — and if so starts the corresponding drag (spec.md §4.C10
// "Drag", SPEC_FULL.md §12 scrollbar/grip supplement).
func (d *Dispatcher) tryBeginBorderDrag(w *wm.Window, rx, ry, sx, sy int) bool {
	w.Lock()
	width, height := w.Width, w.Height
	resizable, movable, scrollable := w.Flags.Resizable, w.Flags.Movable, w.Flags.Scrollable
	total := contentLineCount(w)
	visible := pageSize(w)
	offset := w.ScrollOffset
	onBorder := ry == 0 || ry == height-1 || rx == 0 || rx == width-1
	w.Unlock()

	if !onBorder {
		return false
	}

	switch {
	case resizable && rx == width-1 && ry == height-1:
		d.BeginDrag(w)
		w.Lock()
		w.OriginalWidth, w.OriginalHeight = width, height
		w.Unlock()
		d.startDrag(w, dragResize, sx, sy)
		return true
	case scrollable && (rx == 0 || rx == width-1) && ry > 0 && ry < height-1 && total > visible:
		d.dragScrollTotal, d.dragScrollVisible, d.dragScrollOrigOffset = total, visible, offset
		d.startDrag(w, dragScrollThumb, sx, sy)
		return true
	case movable:
		d.BeginDrag(w)
		d.startDrag(w, dragMove, sx, sy)
		return true
	}
	return false
}

func (d *Dispatcher) startDrag(w *wm.Window, kind dragKind, sx, sy int) {
	d.dragKind = kind
	d.dragWindow = w.ID
	d.dragStartX, d.dragStartY = sx, sy
}

// continueDrag applies an in-progress drag's effect for ev, ending it
// on release or if the window has since disappeared.
func (d *Dispatcher) continueDrag(ev driver.MouseEvent) {
	w := d.State.Get(d.dragWindow)
	if w == nil || ev.Action == driver.ActionReleased {
		if w != nil {
			d.EndDrag(w)
		}
		d.dragKind = noDrag
		return
	}

	dx, dy := ev.X-d.dragStartX, ev.Y-d.dragStartY
	switch d.dragKind {
	case dragMove:
		w.Lock()
		w.Left = w.OriginalLeft + dx
		w.Top = w.OriginalTop + dy
		w.Flags.IsDirty = true
		w.Unlock()
	case dragResize:
		w.Lock()
		nw, nh := w.OriginalWidth+dx, w.OriginalHeight+dy
		if nw < 4 {
			nw = 4
		}
		if nh < 3 {
			nh = 3
		}
		w.Width, w.Height = nw, nh
		w.Flags.IsInvalidated = true
		w.Flags.IsDirty = true
		w.Unlock()
	case dragScrollThumb:
		if d.dragScrollVisible <= 1 {
			return
		}
		maxScroll := d.dragScrollTotal - d.dragScrollVisible
		if maxScroll <= 0 {
			return
		}
		frac := float64(dy) / float64(d.dragScrollVisible-1)
		offset := d.dragScrollOrigOffset + int(frac*float64(maxScroll)+0.5)
		w.Lock()
		w.ScrollOffset = layout.ClampScroll(offset, d.dragScrollTotal, d.dragScrollVisible)
		w.Flags.IsDirty = true
		w.Unlock()
	}
}
