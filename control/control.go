// Package control declares the capability contract the window
// rendering/layout/input pipeline requires of a control (spec.md §3
// "Control"). Per spec.md §1 concrete widgets are out of scope beyond
// what the pipeline itself needs to be testable; this package therefore
// carries the contract plus the handful of controls the pipeline's own
// tests exercise (a markup text leaf, a stack container, a scrollable
// container), not a widget library.
//
// Grounded on the teacher's capability-flags-over-inheritance style
// (tui.LayoutNode carries Direction/Width/Height/Padding/Border rather
// than subclassing), generalized per spec.md §9 "Control polymorphism":
// a capability record instead of a type hierarchy, with IMouseAware /
// IFocusable / IScrollableContainer expressed as plain bool-returning
// methods any control answers (possibly always false), not as optional
// interface assertions a caller must type-switch on.
package control

import "github.com/consolewm/consolewm/driver"

// Alignment is the horizontal placement of a non-stretched control
// within its row (spec.md §4.C4).
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignStretch
)

// Sticky pins a control to the top or bottom band of its window,
// exempting it from scrolling (spec.md §4.C4, Glossary "Sticky band").
type Sticky int

const (
	StickyNone Sticky = iota
	StickyTop
	StickyBottom
)

// Margin is per-side spacing reserved around a control during layout.
type Margin struct {
	Top, Right, Bottom, Left int
}

// ID identifies a control within its owning window's arena (see
// spec.md §9 "Container <-> child back-reference": children are owned
// values, the back-reference is a non-owning ID, not a pointer cycle).
type ID int

// NoID is the zero value of ID, meaning "no control"/"no container".
const NoID ID = 0

// Control is the capability contract the layout/paint/dispatch
// pipeline consumes. A container additionally implements
// ScrollableContainer if it wants scroll-into-view support.
type Control interface {
	// MeasureDesired returns the control's desired size given the
	// available space, without mutating layout state.
	MeasureDesired(availW, availH int) (w, h int)

	// Render produces avail{W,H}-constrained rows of markup- or
	// ANSI-decorated text. A control that panics during Render is
	// caught by the renderer and replaced with a diagnostic row
	// (spec.md §4.C5, §7 RenderFault) — Render itself is not expected
	// to return an error for that case.
	Render(availW, availH int) []string

	StickyPosition() Sticky
	GetMargin() Margin
	GetAlignment() Alignment
	Visible() bool

	CanFocus() bool
	HasFocus() bool
	SetFocus(bool)
	IsEnabled() bool

	// ProcessKey handles a key event already routed to this control
	// (it has focus), returning whether it was handled.
	ProcessKey(ev driver.KeyEvent) bool
	// ProcessMouse handles a mouse event hit-tested to this control,
	// returning whether it was handled (consumed).
	ProcessMouse(ev driver.MouseEvent) bool

	WantsMouse() bool
	CanFocusWithMouse() bool

	// CursorPosition returns the control-relative position the text
	// cursor should be drawn at, if the control currently wants the
	// cursor visible.
	CursorPosition() (x, y int, ok bool)

	// ContainerBackRef returns the owning container's ID, or NoID for a
	// control not (yet) attached to a container.
	ContainerBackRef() ID
	SetContainerBackRef(ID)
}

// ScrollableContainer is implemented by container controls that can
// scroll one of their children into view (spec.md §4.C4
// scroll_into_view).
type ScrollableContainer interface {
	Control
	ScrollChildIntoView(child ID)
}

// Container is implemented by any control with children, used by the
// layout tree builder to recurse.
type Container interface {
	Control
	Children() []Control
}

// Base provides the capability defaults most leaf controls want:
// not focusable, doesn't want the mouse, no sticky/margin/alignment
// override. Embed it and override only what differs.
type Base struct {
	Sticky      Sticky
	Margin      Margin
	Alignment   Alignment
	Disabled    bool
	Hidden      bool
	focused     bool
	containerID ID
}

func (b *Base) StickyPosition() Sticky       { return b.Sticky }
func (b *Base) GetMargin() Margin            { return b.Margin }
func (b *Base) GetAlignment() Alignment      { return b.Alignment }
func (b *Base) Visible() bool                { return !b.Hidden }
func (b *Base) IsEnabled() bool              { return !b.Disabled }
func (b *Base) CanFocus() bool               { return false }
func (b *Base) HasFocus() bool               { return b.focused }
func (b *Base) SetFocus(f bool)              { b.focused = f }
func (b *Base) ProcessKey(driver.KeyEvent) bool   { return false }
func (b *Base) ProcessMouse(driver.MouseEvent) bool { return false }
func (b *Base) WantsMouse() bool             { return false }
func (b *Base) CanFocusWithMouse() bool      { return b.CanFocus() }
func (b *Base) CursorPosition() (int, int, bool) { return 0, 0, false }
func (b *Base) ContainerBackRef() ID         { return b.containerID }
func (b *Base) SetContainerBackRef(id ID)    { b.containerID = id }
