package cellgrid

import (
	"strings"

	"github.com/consolewm/consolewm/wmerrors"
)

// Rect is an axis-aligned region in cell coordinates, half-open: a
// point (x,y) is inside iff X <= x < X+W && Y <= y < Y+H.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x,y) is inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect returns the overlap of r and o (possibly empty).
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// BoxChars are the six glyphs used by Grid.Box (corners then edges).
type BoxChars struct {
	TL, TR, BL, BR rune
	H, V           rune
}

// Grid is a W×H matrix of Cells, the lowest layer of the compositor
// (spec.md §3 "Grid", §4.C1). Every mutating call is clipped silently:
// writes that fall (even partially) outside the grid are dropped, not
// an error. Only Set/Get with an explicit out-of-range coordinate
// return a hard InvalidBounds error, matching spec.md §4.C1.
type Grid struct {
	width, height int
	cells         []Cell

	// trailingEscape holds an ANSI escape that occurred after the last
	// visible character written on a row — it has nowhere to attach as
	// a Cell.AnsiEscape prefix, so it is held per-row and emitted after
	// the row's final cell on flush.
	trailingEscape []string

	dirty map[int]struct{} // dirty cell indices (y*width+x)
}

// NewGrid constructs a Grid of the given size, filled with blank cells
// on the default background.
func NewGrid(width, height int) *Grid {
	g := &Grid{}
	g.Resize(width, height)
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Resize preserves the overlap region and fills the rest with space on
// the default background (spec.md §3 Grid invariant).
func (g *Grid) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	newCells := make([]Cell, width*height)
	for i := range newCells {
		newCells[i] = Blank(Default)
	}
	minW, minH := min(width, g.width), min(height, g.height)
	for y := 0; y < minH; y++ {
		copy(newCells[y*width:y*width+minW], g.cells[y*g.width:y*g.width+minW])
	}
	g.cells = newCells
	g.width, g.height = width, height
	g.trailingEscape = make([]string, height)
	g.dirty = make(map[int]struct{})
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) idx(x, y int) int { return y*g.width + x }

// Get returns the cell at (x,y), or an InvalidBounds error if the
// coordinate is outside the grid.
func (g *Grid) Get(x, y int) (Cell, error) {
	if !g.inBounds(x, y) {
		return Cell{}, wmerrors.OutOfRange(x, y, g.width, g.height)
	}
	return g.cells[g.idx(x, y)], nil
}

// Set writes a single rune+style to (x,y), or returns an InvalidBounds
// error if the coordinate is outside the grid.
func (g *Grid) Set(x, y int, ch rune, fg, bg Color, attrs Attrs) error {
	if !g.inBounds(x, y) {
		return wmerrors.OutOfRange(x, y, g.width, g.height)
	}
	g.setUnchecked(x, y, Cell{Char: ch, Fg: fg, Bg: bg, Attrs: attrs})
	return nil
}

func (g *Grid) setUnchecked(x, y int, c Cell) {
	i := g.idx(x, y)
	c.Dirty = true
	g.cells[i] = c
	g.dirty[i] = struct{}{}
}

// TrailingEscapeAt returns the trailing escape sequence parked on row
// y (emitted after the last visible cell of that row on flush).
func (g *Grid) TrailingEscapeAt(y int) string {
	if y < 0 || y >= g.height {
		return ""
	}
	return g.trailingEscape[y]
}

// clip returns the sub-rectangle of r that lies inside the grid.
func (g *Grid) clip(r Rect) Rect {
	return r.Intersect(Rect{X: 0, Y: 0, W: g.width, H: g.height})
}

// Fill sets every cell within rect (clipped) to ch/fg/bg with no
// attributes and no pass-through escape.
func (g *Grid) Fill(rect Rect, ch rune, fg, bg Color) {
	rect = g.clip(rect)
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		for x := rect.X; x < rect.X+rect.W; x++ {
			g.setUnchecked(x, y, Cell{Char: ch, Fg: fg, Bg: bg})
		}
	}
}

// Clear fills rect with a blank cell on bg. A nil rect clears the
// whole grid.
func (g *Grid) Clear(rect *Rect, bg Color) {
	r := Rect{X: 0, Y: 0, W: g.width, H: g.height}
	if rect != nil {
		r = *rect
	}
	g.Fill(r, ' ', Default, bg)
}

// HLine draws a horizontal run of ch starting at (x,y), length cells,
// clipped silently.
func (g *Grid) HLine(x, y, length int, ch rune, fg, bg Color) {
	for i := 0; i < length; i++ {
		if g.inBounds(x+i, y) {
			g.setUnchecked(x+i, y, Cell{Char: ch, Fg: fg, Bg: bg})
		}
	}
}

// VLine draws a vertical run of ch starting at (x,y), length cells.
func (g *Grid) VLine(x, y, length int, ch rune, fg, bg Color) {
	for i := 0; i < length; i++ {
		if g.inBounds(x, y+i) {
			g.setUnchecked(x, y+i, Cell{Char: ch, Fg: fg, Bg: bg})
		}
	}
}

// Box draws a rectangular frame using the given glyphs.
func (g *Grid) Box(r Rect, bc BoxChars, fg, bg Color) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	if g.inBounds(r.X, r.Y) {
		g.setUnchecked(r.X, r.Y, Cell{Char: bc.TL, Fg: fg, Bg: bg})
	}
	if g.inBounds(r.X+r.W-1, r.Y) {
		g.setUnchecked(r.X+r.W-1, r.Y, Cell{Char: bc.TR, Fg: fg, Bg: bg})
	}
	if g.inBounds(r.X, r.Y+r.H-1) {
		g.setUnchecked(r.X, r.Y+r.H-1, Cell{Char: bc.BL, Fg: fg, Bg: bg})
	}
	if g.inBounds(r.X+r.W-1, r.Y+r.H-1) {
		g.setUnchecked(r.X+r.W-1, r.Y+r.H-1, Cell{Char: bc.BR, Fg: fg, Bg: bg})
	}
	g.HLine(r.X+1, r.Y, r.W-2, bc.H, fg, bg)
	g.HLine(r.X+1, r.Y+r.H-1, r.W-2, bc.H, fg, bg)
	g.VLine(r.X, r.Y+1, r.H-2, bc.V, fg, bg)
	g.VLine(r.X+r.W-1, r.Y+1, r.H-2, bc.V, fg, bg)
}

// Write draws str starting at (x,y), absorbing inline ANSI escape
// sequences into the following cell's AnsiEscape (or, if the escape
// occurs after the final visible character, into the row's trailing
// escape). Writes past the grid's edges are clipped silently; str is
// not wrapped across rows — only '\n' advances to the next row.
func (g *Grid) Write(x, y int, str string, fg, bg Color) {
	g.writeAttrs(x, y, str, fg, bg, Attrs{})
}

func (g *Grid) writeAttrs(x, y int, str string, fg, bg Color, attrs Attrs) {
	col, row := x, y
	pendingEscape := strings.Builder{}

	flushPendingAsCell := func(r rune) {
		esc := pendingEscape.String()
		pendingEscape.Reset()
		if g.inBounds(col, row) {
			g.setUnchecked(col, row, Cell{Char: r, Fg: fg, Bg: bg, Attrs: attrs, AnsiEscape: esc})
		}
		col++
	}

	runes := []rune(str)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			if pendingEscape.Len() > 0 && row >= 0 && row < g.height {
				g.trailingEscape[row] += pendingEscape.String()
				pendingEscape.Reset()
			}
			row++
			col = x
			continue
		}
		if r == 0x1b { // ESC: consume a full CSI/simple escape sequence
			seq, consumed := scanEscape(runes[i:])
			pendingEscape.WriteString(seq)
			i += consumed - 1
			continue
		}
		flushPendingAsCell(r)
	}

	if pendingEscape.Len() > 0 && row >= 0 && row < g.height {
		g.trailingEscape[row] += pendingEscape.String()
	}
}

// WriteClipped behaves like Write but additionally clips all output to
// rect, beyond the grid's own bounds. An inline escape is absorbed into
// the next cell written inside rect; an escape with no such cell after
// it is dropped rather than parked as the row's trailing escape.
func (g *Grid) WriteClipped(x, y int, str string, fg, bg Color, rect Rect) {
	if !rect.Contains(x, y) && (y < rect.Y || y >= rect.Y+rect.H) {
		// still allow writes that start left of the rect's right edge
		// on a valid row; column clipping happens per-rune below.
	}
	col, row := x, y
	pendingEscape := strings.Builder{}
	runes := []rune(str)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			row++
			col = x
			continue
		}
		if r == 0x1b {
			seq, consumed := scanEscape(runes[i:])
			pendingEscape.WriteString(seq)
			i += consumed - 1
			continue
		}
		if rect.Contains(col, row) && g.inBounds(col, row) {
			esc := pendingEscape.String()
			pendingEscape.Reset()
			g.setUnchecked(col, row, Cell{Char: r, Fg: fg, Bg: bg, AnsiEscape: esc})
		}
		col++
	}
}

// scanEscape returns the escape sequence starting at runes[0] (which
// must be ESC) and how many runes it consumed. Recognizes CSI
// (`ESC [ params final`) and simple two-byte escapes; anything else is
// passed through as a bare ESC.
func scanEscape(runes []rune) (string, int) {
	if len(runes) < 2 {
		return string(runes[:1]), 1
	}
	if runes[1] != '[' {
		return string(runes[:2]), 2
	}
	for i := 2; i < len(runes); i++ {
		if runes[i] >= 0x40 && runes[i] <= 0x7e {
			return string(runes[:i+1]), i + 1
		}
	}
	return string(runes), len(runes)
}

// TakeDirty returns the set of dirty cell indices (y*Width()+x) and
// clears the dirty set.
func (g *Grid) TakeDirty() map[int]struct{} {
	d := g.dirty
	g.dirty = make(map[int]struct{})
	return d
}

// MarkAllDirty marks every cell dirty, used to force a full repaint
// (e.g. after a screen resize).
func (g *Grid) MarkAllDirty() {
	for i := range g.cells {
		g.dirty[i] = struct{}{}
	}
}

// CellAt is an unchecked accessor for internal callers (buffer diffing)
// that already know the coordinate is in range.
func (g *Grid) CellAt(x, y int) Cell { return g.cells[g.idx(x, y)] }

// CopyCellFrom copies the cell at (x,y) from src into the receiver,
// used by the double buffer to sync Front from Back after a flush.
func (g *Grid) CopyCellFrom(src *Grid, x, y int) {
	if !g.inBounds(x, y) {
		return
	}
	c := src.CellAt(x, y)
	c.Dirty = false
	g.cells[g.idx(x, y)] = c
}

// ResetTrailingEscape clears the trailing escape parked on row y,
// called once it has been emitted by a flush.
func (g *Grid) ResetTrailingEscape(y int) {
	if y >= 0 && y < g.height {
		g.trailingEscape[y] = ""
	}
}
