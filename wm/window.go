// Package wm implements the Window State service (spec.md §4.C9 and
// §3 "Window"): the ordered set of windows keyed by id, Z-index
// bumping, the modal stack, and per-window focus state.
//
// Grounded on the teacher's tui/screen.go lock discipline (one mutex
// guarding the shared desktop state, never held across a control
// callback) generalized from "one screen" to "many windows"; Window's
// field set follows spec.md §3 directly since the teacher has no
// multi-window concept to borrow from.
package wm

import (
	"sync"

	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/chrome"
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/layout"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wmerrors"
)

// ID identifies a window.
type ID int

// WindowState is the window's minimize/maximize state.
type WindowState int

const (
	WindowStateNormal WindowState = iota
	WindowStateMinimized
	WindowStateMaximized
)

// Mode distinguishes modeless windows from modal ones.
type Mode int

const (
	Modeless Mode = iota
	Modal
)

// Flags mirrors spec.md §3 Window.flags.
type Flags struct {
	Resizable    bool
	Movable      bool
	Scrollable   bool
	Closable     bool
	Minimizable  bool
	Maximizable  bool
	AlwaysOnTop  bool
	ShowTitle    bool
	ShowClose    bool
	IsActive     bool
	IsDragging   bool
	IsDirty      bool
	IsInvalidated bool
}

// Colors is the per-window color set, falling back to Theme via
// theme.Colors.Resolve.
type Colors struct {
	Fg, Bg                     cellgrid.Color
	ActiveBorderFg             cellgrid.Color
	InactiveBorderFg           cellgrid.Color
	TitleFg                    cellgrid.Color
}

// OnClosing is called during TryClose; returning false vetoes the
// close (spec.md §7 CloseVetoed).
type OnClosing func(w *Window) bool

// OnClosed is called during CompleteClose, after controls are
// disposed and the window is removed from state.
type OnClosed func(w *Window)

// Window is the mutable record the window-state service tracks. All
// mutation happens under mu — callers hold mu themselves via
// Lock/Unlock for a batch of changes, or call methods such as
// Invalidate and Flash that take it.
type Window struct {
	mu sync.Mutex

	ID     ID
	Title  string
	Left, Top, Width, Height int
	Z      int64
	State  WindowState
	Mode   Mode
	Parent ID // zero value means "no parent"

	Flags  Flags
	Colors Colors

	BorderStyle theme.BorderStyle

	Controls    []control.Control
	Interactive []control.Control // flattened focusable subset, rebuilt on invalidate

	LayoutNodes []*layout.Node // rebuilt by paint.Render when Flags.IsInvalidated

	LastFocused  control.Control
	EscapedFrom  control.Control

	ScrollOffset   int
	TopStickyH     int
	BottomStickyH  int

	OriginalLeft, OriginalTop, OriginalWidth, OriginalHeight int

	BorderCache chrome.Cache

	// FlashFrames counts down to zero, decremented once per scheduler
	// tick; while positive the border paints with theme.FlashColor
	// instead of the normal active/inactive border color (spec.md
	// §4.C11 "flash", scenario S7).
	FlashFrames int

	OnClosing OnClosing
	OnClosed  OnClosed

	hasParent bool
}

// Bounds returns the window's current rectangle.
func (w *Window) Bounds() cellgrid.Rect {
	return cellgrid.Rect{X: w.Left, Y: w.Top, W: w.Width, H: w.Height}
}

// Lock/Unlock expose the window's lock for callers that need to batch
// several field mutations (e.g. the dispatcher resolving a drag),
// matching spec.md §5's "mutated only under the window's lock" rule.
func (w *Window) Lock()   { w.mu.Lock() }
func (w *Window) Unlock() { w.mu.Unlock() }

// Invalidate marks the window dirty and its layout tree stale.
func (w *Window) Invalidate() {
	w.mu.Lock()
	w.Flags.IsDirty = true
	w.Flags.IsInvalidated = true
	w.mu.Unlock()
}

// Flash requests n frames of highlighted border, then marks the window
// dirty so the next frame picks the flash color up immediately.
func (w *Window) Flash(n int) {
	w.mu.Lock()
	w.FlashFrames = n
	w.Flags.IsDirty = true
	w.mu.Unlock()
}

// SetParent records w as a modal/owned child of parent.
func (w *Window) SetParent(parent ID) {
	w.Parent = parent
	w.hasParent = true
}

// HasParent reports whether w has an owning parent window.
func (w *Window) HasParent() bool { return w.hasParent }

// TryClose fires OnClosing; a nil handler or a true return lets the
// close proceed (nil error), a false return vetoes it and TryClose
// returns wmerrors.ErrCloseVetoed (spec.md §7 CloseVetoed).
func (w *Window) TryClose() error {
	if w.OnClosing != nil && !w.OnClosing(w) {
		return wmerrors.ErrCloseVetoed
	}
	return nil
}

// CompleteClose fires OnClosed. The caller (State) is responsible for
// removing w from the registry afterward.
func (w *Window) CompleteClose() {
	if w.OnClosed != nil {
		w.OnClosed(w)
	}
}
