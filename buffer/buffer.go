// Package buffer implements the double-buffered flush engine (spec.md
// §3 "ConsoleBuffer", §4.C2): a front grid (what the terminal currently
// shows, as far as we know) and a back grid (the next frame's target),
// diffed line-by-line or cell-by-cell and emitted as ANSI escapes.
//
// Grounded on the teacher's tui/screen.go Screen.renderUnlocked, which
// already does exactly this diff-and-emit for a single flat buffer;
// this package generalizes it to two selectable diff granularities
// (spec.md calls them Line and Cell mode) and returns flush statistics
// instead of writing straight to os.Stdout, so the compositor — not
// this package — owns the actual io.Writer (the console driver).
package buffer

import (
	"fmt"
	"io"
	"strings"

	"github.com/consolewm/consolewm/cellgrid"
)

// Mode selects the diff granularity used by Flush.
type Mode int

const (
	// Line mode re-emits a dirty row in full whenever any cell in it
	// changed. Fewer cursor moves, more bytes; good for largely-opaque
	// windows where most of a dirty row actually changed.
	Line Mode = iota
	// Cell mode emits only runs of differing cells within a dirty row.
	// More cursor moves, fewer bytes; good for sparse single-cell edits.
	Cell
)

// FlushStats reports what a single Flush call did, mirroring the
// "Frame metrics" spec.md §8 S2 requires compositor scenarios to
// assert against.
type FlushStats struct {
	BytesWritten int
	CellsWritten int
	CursorMoves  int
}

// DoubleBuffer owns a front and back cellgrid.Grid of identical size.
// Invariant (spec.md §3): after a successful Flush, Front ≡ Back
// cell-for-cell and there are no dirty lines left.
type DoubleBuffer struct {
	Front, Back *cellgrid.Grid
	dirtyLines  map[int]struct{}
}

// New constructs a DoubleBuffer of the given size with both grids blank.
func New(width, height int) *DoubleBuffer {
	return &DoubleBuffer{
		Front:      cellgrid.NewGrid(width, height),
		Back:       cellgrid.NewGrid(width, height),
		dirtyLines: make(map[int]struct{}),
	}
}

// Resize resizes both grids and marks every line dirty, forcing a full
// redraw on the next Flush (spec.md §4.C8 step 1).
func (b *DoubleBuffer) Resize(width, height int) {
	b.Front.Resize(width, height)
	b.Back.Resize(width, height)
	b.MarkAllDirty()
}

// MarkAllDirty marks every row dirty without touching cell contents.
func (b *DoubleBuffer) MarkAllDirty() {
	for y := 0; y < b.Back.Height(); y++ {
		b.dirtyLines[y] = struct{}{}
	}
}

// MarkDirty marks a single row dirty (used by callers that wrote to
// Back directly rather than through Stage*).
func (b *DoubleBuffer) MarkDirty(y int) {
	if y >= 0 && y < b.Back.Height() {
		b.dirtyLines[y] = struct{}{}
	}
}

// StageLine overwrites row y's back cells starting at column 0 with
// str, and marks the row dirty.
func (b *DoubleBuffer) StageLine(y int, str string, fg, bg cellgrid.Color) {
	b.StageAt(0, y, str, fg, bg)
}

// StageAt writes str into the back grid starting at (x,y) and marks
// row y dirty. Absorption of inline ANSI escapes follows
// cellgrid.Grid.Write's rules.
func (b *DoubleBuffer) StageAt(x, y int, str string, fg, bg cellgrid.Color) {
	b.Back.Write(x, y, str, fg, bg)
	b.MarkDirty(y)
}

// DirtyLineCount reports how many lines are currently dirty (used by
// the compositor to decide whether a frame has any work to do).
func (b *DoubleBuffer) DirtyLineCount() int { return len(b.dirtyLines) }

const resetSGR = "\x1b[0m"

// Flush diffs Back against Front per the given Mode, writes the result
// to w, copies Back into Front for every row touched, and clears the
// dirty set. A frame with no actual cell differences writes zero bytes
// even if lines were marked dirty (spec.md §8 property 2, scenario S3).
func (b *DoubleBuffer) Flush(w io.Writer, mode Mode) (FlushStats, error) {
	var stats FlushStats
	var out strings.Builder

	rows := make([]int, 0, len(b.dirtyLines))
	for y := range b.dirtyLines {
		rows = append(rows, y)
	}
	// Deterministic top-to-bottom order keeps output stable for tests.
	sortInts(rows)

	width := b.Back.Width()

	for _, y := range rows {
		changed := false
		for x := 0; x < width; x++ {
			if !b.Back.CellAt(x, y).SameVisual(b.Front.CellAt(x, y)) {
				changed = true
				break
			}
		}
		if !changed {
			copyRow(b.Front, b.Back, y)
			delete(b.dirtyLines, y)
			continue
		}

		switch mode {
		case Line:
			writeCursorPos(&out, y+1, 1)
			stats.CursorMoves++
			rowOpen := false
			var lastAttrs cellgrid.Attrs
			var lastFg, lastBg cellgrid.Color
			for x := 0; x < width; x++ {
				c := b.Back.CellAt(x, y)
				writeCell(&out, c, &rowOpen, &lastFg, &lastBg, &lastAttrs)
				stats.CellsWritten++
			}
			if trail := b.Back.TrailingEscapeAt(y); trail != "" {
				out.WriteString(trail)
			}
			out.WriteString(resetSGR)
		case Cell:
			x := 0
			for x < width {
				if b.Back.CellAt(x, y).SameVisual(b.Front.CellAt(x, y)) {
					x++
					continue
				}
				// start of a differing run
				runStart := x
				writeCursorPos(&out, y+1, runStart+1)
				stats.CursorMoves++
				rowOpen := false
				var lastAttrs cellgrid.Attrs
				var lastFg, lastBg cellgrid.Color
				for x < width && !b.Back.CellAt(x, y).SameVisual(b.Front.CellAt(x, y)) {
					c := b.Back.CellAt(x, y)
					writeCell(&out, c, &rowOpen, &lastFg, &lastBg, &lastAttrs)
					stats.CellsWritten++
					x++
				}
				if rowOpen {
					out.WriteString(resetSGR)
				}
			}
			if trail := b.Back.TrailingEscapeAt(y); trail != "" {
				out.WriteString(trail)
			}
		}

		copyRow(b.Front, b.Back, y)
		delete(b.dirtyLines, y)
	}
	b.clearTrailingEscapes(rows)

	s := out.String()
	if s == "" {
		return stats, nil
	}
	n, err := io.WriteString(w, s)
	stats.BytesWritten = n
	return stats, err
}

func (b *DoubleBuffer) clearTrailingEscapes(rows []int) {
	// TrailingEscapeAt is cumulative on Write; once flushed, reset it so
	// it isn't re-emitted on a later flush of the same row without a
	// fresh write.
	for _, y := range rows {
		b.Back.ResetTrailingEscape(y)
	}
}

func writeCursorPos(out *strings.Builder, row, col int) {
	fmt.Fprintf(out, "\x1b[%d;%dH", row, col)
}

func writeCell(out *strings.Builder, c cellgrid.Cell, rowOpen *bool, lastFg, lastBg *cellgrid.Color, lastAttrs *cellgrid.Attrs) {
	styleChanged := !*rowOpen || c.Fg != *lastFg || c.Bg != *lastBg || c.Attrs != *lastAttrs
	if c.AnsiEscape != "" {
		out.WriteString(c.AnsiEscape)
	} else if styleChanged {
		if *rowOpen {
			out.WriteString(resetSGR)
		}
		out.WriteString(sgrFor(c))
		*lastFg, *lastBg, *lastAttrs = c.Fg, c.Bg, c.Attrs
	}
	*rowOpen = true
	ch := c.Char
	if ch == 0 {
		ch = ' '
	}
	out.WriteRune(ch)
}

func sgrFor(c cellgrid.Cell) string {
	var codes []string
	a := c.Attrs
	if a.Bold {
		codes = append(codes, "1")
	}
	if a.Dim {
		codes = append(codes, "2")
	}
	if a.Italic {
		codes = append(codes, "3")
	}
	if a.Underline {
		codes = append(codes, "4")
	}
	if a.Blink {
		codes = append(codes, "5")
	}
	if a.Reverse {
		codes = append(codes, "7")
	}
	if a.Strike {
		codes = append(codes, "9")
	}
	codes = append(codes, colorCodes(c.Fg, false)...)
	codes = append(codes, colorCodes(c.Bg, true)...)
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorCodes(c cellgrid.Color, bg bool) []string {
	if c == cellgrid.Default {
		return nil
	}
	base := 38
	if bg {
		base = 48
	}
	if c.Palette >= 0 {
		return []string{fmt.Sprintf("%d;5;%d", base, c.Palette)}
	}
	return []string{fmt.Sprintf("%d;2;%d;%d;%d", base, c.R, c.G, c.B)}
}

func copyRow(front, back *cellgrid.Grid, y int) {
	w := back.Width()
	for x := 0; x < w; x++ {
		front.CopyCellFrom(back, x, y)
		back.CopyCellFrom(front, x, y) // clears Back's per-cell Dirty flag
	}
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
