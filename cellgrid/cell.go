// Package cellgrid implements the character grid: the lowest layer of
// the compositor (package buffer pairs two Grids into a double buffer). A Grid is a W×H matrix of Cells;
// writes, fills, and line/box drawing are clipped silently rather than
// erroring, matching a terminal's own tolerance for off-screen writes.
package cellgrid

// Attrs are the boolean text attributes a Cell can carry.
type Attrs struct {
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Strike    bool
	Reverse   bool
	Blink     bool
}

// Color is either a 24-bit RGB triple or an indexed palette entry.
// Palette is negative when unused (RGB mode).
type Color struct {
	R, G, B byte
	Palette int16
}

// Default is the Color meaning "inherit terminal default". It is not
// the zero value: the zero Color is palette entry 0.
var Default = Color{Palette: -1}

func (c Color) isDefault() bool {
	return c == Default
}

// RGB builds a 24-bit Color.
func RGB(r, g, b byte) Color {
	return Color{R: r, G: g, B: b, Palette: -1}
}

// Palette256 builds an indexed-palette Color.
func Palette256(idx uint8) Color {
	return Color{Palette: int16(idx)}
}

// Cell is one character position on screen with its attributes.
//
// AnsiEscape is an optional raw escape sequence emitted verbatim
// immediately before Char — this is how a "passed-through" region (a
// control that already produced ANSI-decorated output) keeps its own
// SGR sequence instead of having the grid recompute one from Fg/Bg/Attrs.
// Char is still a printable codepoint even for passed-through cells.
type Cell struct {
	Char       rune
	Fg, Bg     Color
	Attrs      Attrs
	AnsiEscape string
	Dirty      bool
}

// Blank returns the cell used to clear a region: a space on the given
// background with no attributes or pass-through escape.
func Blank(bg Color) Cell {
	return Cell{Char: ' ', Fg: Default, Bg: bg}
}

// SameVisual reports whether two cells would render identically,
// ignoring Dirty.
func (c Cell) SameVisual(o Cell) bool {
	return c.Char == o.Char && c.Fg == o.Fg && c.Bg == o.Bg &&
		c.Attrs == o.Attrs && c.AnsiEscape == o.AnsiEscape
}
