package paint

import (
	"strings"
	"testing"

	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/driver"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wm"
)

// panicControl always panics during Render, exercising the RenderFault
// path (spec.md §7).
type panicControl struct {
	control.Base
}

func (p *panicControl) MeasureDesired(w, h int) (int, int) { return w, 1 }
func (p *panicControl) Render(w, h int) []string           { panic("boom") }
func (p *panicControl) ProcessKey(driver.KeyEvent) bool     { return false }
func (p *panicControl) ProcessMouse(driver.MouseEvent) bool { return false }

func newTestWindow(controls []control.Control) *wm.Window {
	w := &wm.Window{
		Left: 0, Top: 0, Width: 20, Height: 10,
		BorderStyle: theme.BorderSingle,
	}
	w.Flags.ShowTitle = true
	w.Flags.IsActive = true
	w.Controls = controls
	w.Flags.IsInvalidated = true
	return w
}

// TestRenderFaultReplacesLineInsteadOfAborting covers spec.md §7
// RenderFault: a control whose Render panics must not crash the frame,
// and the rest of the window still paints.
func TestRenderFaultReplacesLineInsteadOfAborting(t *testing.T) {
	grid := cellgrid.NewGrid(20, 10)
	th := theme.Default()
	w := newTestWindow([]control.Control{&panicControl{}, control.NewText("ok")})

	visible := []cellgrid.Rect{w.Bounds()}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Render must recover from a panicking control, got panic: %v", r)
		}
	}()
	Render(grid, w, th, visible)

	row := string(rowText(grid, 1, w.Left+1, 18))
	if !strings.Contains(row, "render error") {
		t.Errorf("expected diagnostic row in place of the panicking control's output, got %q", row)
	}
}

// TestRenderPaintsBorderRows checks that the border cache is exercised
// and corner glyphs land on the grid (spec.md §4.C6).
func TestRenderPaintsBorderRows(t *testing.T) {
	grid := cellgrid.NewGrid(20, 10)
	th := theme.Default()
	w := newTestWindow([]control.Control{control.NewText("hi")})
	visible := []cellgrid.Rect{w.Bounds()}

	Render(grid, w, th, visible)

	cell := grid.CellAt(w.Left, w.Top)
	if cell.Char == ' ' || cell.Char == 0 {
		t.Errorf("expected a border corner glyph at the window origin, got %q", cell.Char)
	}
}

func rowText(grid *cellgrid.Grid, y, x, n int) []rune {
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		c := grid.CellAt(x+i, y)
		if c.Char == 0 {
			out = append(out, ' ')
			continue
		}
		out = append(out, c.Char)
	}
	return out
}
