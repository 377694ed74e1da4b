// Package paint implements the Window Renderer (spec.md §4.C5):
// measure -> arrange -> paint of one window's controls into the shared
// cell grid, with border caching, sticky bands, and scroll-offset
// shifting.
//
// Grounded on the teacher's tui/layout_engine.go Draw pass (recursive
// control.Draw into a screen at an absolute origin) and render.go's
// per-node drawing switch, generalized from one full-screen root node
// to many windows, each clipped to its own visible-region rectangles
// from the region package rather than always drawing to the whole
// screen.
package paint

import (
	"fmt"

	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/chrome"
	"github.com/consolewm/consolewm/layout"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wm"
	"github.com/consolewm/consolewm/wmerrors"
	"github.com/consolewm/consolewm/wmlog"
	"github.com/consolewm/consolewm/wmmetrics"
)

// Render paints w into grid, clipped to the rectangles in visible
// (screen coordinates, already intersected with w's bounds by the
// compositor via the region package). It rebuilds w's layout tree
// first if Flags.IsInvalidated is set.
func Render(grid *cellgrid.Grid, w *wm.Window, th *theme.Theme, visible []cellgrid.Rect) {
	w.Lock()
	defer w.Unlock()

	contentX, contentY := 1, 1
	contentW, contentH := w.Width-2, w.Height-2
	if w.BorderStyle == theme.BorderNone {
		contentX, contentY = 0, 0
		contentW, contentH = w.Width, w.Height
	}
	if contentW < 0 {
		contentW = 0
	}
	if contentH < 0 {
		contentH = 0
	}

	if w.Flags.IsInvalidated {
		w.LayoutNodes, w.TopStickyH, w.BottomStickyH = layout.Build(w.Controls, contentW, contentH)
		w.Flags.IsInvalidated = false
	}

	clip := func(x, y int) bool {
		sx, sy := w.Left+x, w.Top+y
		for _, r := range visible {
			if r.Contains(sx, sy) {
				return true
			}
		}
		return false
	}

	paintBorder(grid, w, th, clip)

	winRect := cellgrid.Rect{X: contentX, Y: contentY, W: contentW, H: contentH}
	for _, n := range w.LayoutNodes {
		paintNode(grid, n, w, winRect, visible, w.Title)
	}

	w.Flags.IsDirty = false
}

// paintNode renders one layout node's control and recurses into its
// children, mapping (control_y - scroll_offset) to window row per
// spec.md §4.C5 step 2. A control whose Render panics is replaced with
// a diagnostic row instead of aborting the frame (spec.md §7
// RenderFault).
func paintNode(grid *cellgrid.Grid, n *layout.Node, w *wm.Window, win cellgrid.Rect, visible []cellgrid.Rect, windowTitle string) {
	b := n.Visible(w.ScrollOffset)
	if b.H <= 0 || b.W <= 0 {
		return
	}

	lines := renderSafely(n, b.W, b.H, windowTitle)
	for i, line := range lines {
		row := b.Y + i
		if row < 0 || row >= win.H {
			continue
		}
		if len(line) == 0 {
			continue
		}
		x := w.Left + win.X + b.X
		y := w.Top + win.Y + row
		content := cellgrid.Rect{X: w.Left + win.X, Y: w.Top + win.Y, W: win.W, H: win.H}
		for _, r := range visible {
			grid.WriteClipped(x, y, line, w.Colors.Fg, w.Colors.Bg, r.Intersect(content))
		}
	}

	for _, child := range n.Children {
		childWin := win
		childWin.X = win.X + b.X
		childWin.Y = win.Y + b.Y
		paintNode(grid, child, w, childWin, visible, windowTitle)
	}
}

func renderSafely(n *layout.Node, w, h int, windowTitle string) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			wmmetrics.RecordRenderFault(windowTitle)
			err := wmerrors.New(wmerrors.RenderFault, "control panicked during render").WithDetails(r)
			wmlog.Get().Error("render fault", "window", windowTitle, "error", err)
			lines = []string{fmt.Sprintf("\x1b[7m render error: %v \x1b[0m", r)}
		}
	}()
	return n.Control.Render(w, h)
}

func paintBorder(grid *cellgrid.Grid, w *wm.Window, th *theme.Theme, clip func(x, y int) bool) {
	if w.BorderStyle == theme.BorderNone {
		return
	}
	fg := w.Colors.ActiveBorderFg
	if !w.Flags.IsActive {
		fg = w.Colors.InactiveBorderFg
	}
	if fg == cellgrid.Default {
		if w.Flags.IsActive {
			fg = th.ActiveBorderFg.Peek()
		} else {
			fg = th.InactiveBorderFg.Peek()
		}
	}
	if w.FlashFrames > 0 {
		fg = th.FlashColor.Peek()
	}
	bg := w.Colors.Bg

	flags := chrome.Flags{
		ShowTitle:   w.Flags.ShowTitle,
		Closable:    w.Flags.Closable,
		ShowClose:   w.Flags.ShowClose,
		Minimizable: w.Flags.Minimizable,
		Maximizable: w.Flags.Maximizable,
		Maximized:   w.State == wm.WindowStateMaximized,
		Resizable:   w.Flags.Resizable,
		Scrollable:  w.Flags.Scrollable,
	}
	top, bottom := w.BorderCache.Rows(w.Width, w.Title, w.Flags.IsActive, w.BorderStyle, flags)

	for dx, r := range []rune(top) {
		if clip(dx, 0) {
			grid.Set(w.Left+dx, w.Top, r, fg, bg, cellgrid.Attrs{})
		}
	}
	for dx, r := range []rune(bottom) {
		if clip(dx, w.Height-1) {
			grid.Set(w.Left+dx, w.Top+w.Height-1, r, fg, bg, cellgrid.Attrs{})
		}
	}

	totalLines := contentLineCount(w)
	visibleH := w.Height - 2
	for row := 0; row < visibleH; row++ {
		g := chrome.SideGlyph(row, visibleH, w.BorderStyle, flags, w.ScrollOffset, totalLines)
		if clip(0, row+1) {
			grid.Set(w.Left, w.Top+row+1, g, fg, bg, cellgrid.Attrs{})
		}
		if clip(w.Width-1, row+1) {
			grid.Set(w.Left+w.Width-1, w.Top+row+1, g, fg, bg, cellgrid.Attrs{})
		}
	}
}

func contentLineCount(w *wm.Window) int {
	total := 0
	for _, n := range w.LayoutNodes {
		bottom := n.Bounds.Y + n.Bounds.H
		if bottom > total {
			total = bottom
		}
	}
	return total
}

