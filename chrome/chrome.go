// Package chrome implements the Border Renderer (spec.md §4.C6):
// corner/edge glyphs, title, control buttons, resize grip and
// scrollbar, with a cache keyed on (width, active, border style,
// title, flags) per the spec's cache invariant.
//
// Grounded on the teacher's drawBorder in tui/layout_engine.go (same
// corner/edge glyph placement algorithm), generalized from a single
// fixed box-drawing style to the Theme's four BorderStyle variants and
// extended with title/button/scrollbar composition the teacher's
// fixed-style border never needed.
package chrome

import (
	"strings"

	"github.com/consolewm/consolewm/ansitext"
	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/theme"
)

// Flags is the set of window chrome toggles that affect rendering.
type Flags struct {
	ShowTitle    bool
	Closable     bool
	ShowClose    bool
	Minimizable  bool
	Maximizable  bool
	Maximized    bool
	Resizable    bool
	Scrollable   bool
}

// Glyphs returns the box-drawing character set for style, downgrading
// DoubleLine to single-line glyphs when the window is inactive (spec.md
// scenario S6).
func Glyphs(style theme.BorderStyle, active bool) cellgrid.BoxChars {
	switch style {
	case theme.BorderRounded:
		return cellgrid.BoxChars{TL: '╭', TR: '╮', BL: '╰', BR: '╯', H: '─', V: '│'}
	case theme.BorderDouble:
		if active {
			return cellgrid.BoxChars{TL: '╔', TR: '╗', BL: '╚', BR: '╝', H: '═', V: '║'}
		}
		return cellgrid.BoxChars{TL: '┌', TR: '┐', BL: '└', BR: '┘', H: '─', V: '│'}
	case theme.BorderSingle:
		return cellgrid.BoxChars{TL: '┌', TR: '┐', BL: '└', BR: '┘', H: '─', V: '│'}
	default: // BorderNone
		return cellgrid.BoxChars{TL: ' ', TR: ' ', BL: ' ', BR: ' ', H: ' ', V: ' '}
	}
}

// Buttons returns the right-aligned button glyph run, each 3 cells
// wide, for the flags that are set (spec.md §4.C6).
func Buttons(f Flags) string {
	var sb strings.Builder
	if f.Minimizable {
		sb.WriteString("[_]")
	}
	if f.Maximizable {
		if f.Maximized {
			sb.WriteString("[-]")
		} else {
			sb.WriteString("[+]")
		}
	}
	if f.Closable && f.ShowClose {
		sb.WriteString("[X]")
	}
	return sb.String()
}

// TopRow composes the top border: corner, left padding, bracketed
// title (if shown and non-empty, truncated to fit), right padding,
// buttons, corner — exactly `width` runes.
func TopRow(width int, title string, active bool, style theme.BorderStyle, f Flags) string {
	g := Glyphs(style, active)
	if width < 2 {
		return strings.Repeat(string(g.H), max0(width))
	}

	buttons := Buttons(f)
	var titleSeg string
	if f.ShowTitle && title != "" {
		titleSeg = " " + title + " "
	}

	innerWidth := width - 2
	reserved := len([]rune(buttons))
	avail := innerWidth - reserved
	if avail < 0 {
		avail = 0
	}
	if ansitext.VisibleLengthMarkup(titleSeg) > avail {
		if avail <= 1 {
			titleSeg = ""
		} else {
			titleSeg = ansitext.TruncateMarkup(titleSeg, avail-1) + "…"
		}
	}

	fillerLen := innerWidth - len([]rune(titleSeg)) - reserved
	if fillerLen < 0 {
		fillerLen = 0
	}
	leftPad := fillerLen / 2
	rightPad := fillerLen - leftPad

	var sb strings.Builder
	sb.WriteRune(g.TL)
	sb.WriteString(strings.Repeat(string(g.H), leftPad))
	sb.WriteString(titleSeg)
	sb.WriteString(strings.Repeat(string(g.H), rightPad))
	sb.WriteString(buttons)
	sb.WriteRune(g.TR)
	return sb.String()
}

// BottomRow composes the bottom border; the bottom-right corner is
// replaced by a resize grip glyph when f.Resizable is set.
func BottomRow(width int, active bool, style theme.BorderStyle, f Flags) string {
	g := Glyphs(style, active)
	if width < 2 {
		return strings.Repeat(string(g.H), max0(width))
	}
	corner := g.BR
	if f.Resizable {
		corner = '◢'
	}
	var sb strings.Builder
	sb.WriteRune(g.BL)
	sb.WriteString(strings.Repeat(string(g.H), width-2))
	sb.WriteRune(corner)
	return sb.String()
}

// SideGlyph returns the vertical border glyph for a given content row,
// substituting scrollbar thumb/track glyphs when f.Scrollable and the
// content overflows the viewport.
func SideGlyph(row, visibleH int, style theme.BorderStyle, f Flags, scrollOffset, totalLines int) rune {
	g := Glyphs(style, true)
	if !f.Scrollable || totalLines <= visibleH || visibleH <= 1 {
		return g.V
	}
	thumb := ScrollbarThumbPos(scrollOffset, totalLines, visibleH)
	if row == thumb {
		return '█'
	}
	return '░'
}

// ScrollbarThumbPos computes the 0-based row (within [0, visibleH)) the
// scrollbar thumb occupies, per spec.md §4.C6's
// round(scroll_offset/(total-visible) * (visibleH-1)) formula.
func ScrollbarThumbPos(scrollOffset, totalLines, visibleH int) int {
	maxScroll := totalLines - visibleH
	if maxScroll <= 0 {
		return 0
	}
	pos := float64(scrollOffset) / float64(maxScroll) * float64(visibleH-1)
	return int(pos + 0.5)
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Cache holds the last rendered top/bottom rows and the parameters
// they were computed from, reused while (width, active, style, title,
// flags) are unchanged (spec.md §4.C6 cache invariant).
type Cache struct {
	width   int
	active  bool
	style   theme.BorderStyle
	title   string
	flags   Flags
	top     string
	bottom  string
	primed  bool
}

// Rows returns the cached (top, bottom) rows, recomputing them only if
// any cache key changed since the last call.
func (c *Cache) Rows(width int, title string, active bool, style theme.BorderStyle, f Flags) (top, bottom string) {
	if c.primed && c.width == width && c.active == active && c.style == style && c.title == title && c.flags == f {
		return c.top, c.bottom
	}
	c.width, c.active, c.style, c.title, c.flags = width, active, style, title, f
	c.top = TopRow(width, title, active, style, f)
	c.bottom = BottomRow(width, active, style, f)
	c.primed = true
	return c.top, c.bottom
}
