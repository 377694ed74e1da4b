package buffer

import (
	"strings"
	"testing"

	"github.com/consolewm/consolewm/cellgrid"
)

// TestFlushEquivalence is spec.md §8 invariant 1: after every flush,
// Front == Back cell-for-cell and there are no dirty lines left.
func TestFlushEquivalence(t *testing.T) {
	b := New(10, 3)
	b.StageLine(1, "hello", cellgrid.Default, cellgrid.Default)

	if _, err := b.Flush(&strings.Builder{}, Line); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if b.DirtyLineCount() != 0 {
		t.Fatalf("expected no dirty lines after flush, got %d", b.DirtyLineCount())
	}
	for x := 0; x < b.Back.Width(); x++ {
		if b.Front.CellAt(x, 1) != b.Back.CellAt(x, 1) {
			t.Fatalf("front/back diverged at x=%d: %+v vs %+v", x, b.Front.CellAt(x, 1), b.Back.CellAt(x, 1))
		}
	}
}

// TestNoOpFrame is spec.md §8 invariant 2 / scenario S3: two
// consecutive flushes with no state change emit zero bytes, in both
// modes.
func TestNoOpFrame(t *testing.T) {
	for _, mode := range []Mode{Line, Cell} {
		b := New(10, 3)
		b.StageLine(0, "static content", cellgrid.Default, cellgrid.Default)
		var out strings.Builder
		if _, err := b.Flush(&out, mode); err != nil {
			t.Fatalf("first flush: %v", err)
		}

		b.StageLine(0, "static content", cellgrid.Default, cellgrid.Default)
		var out2 strings.Builder
		stats, err := b.Flush(&out2, mode)
		if err != nil {
			t.Fatalf("second flush: %v", err)
		}
		if stats.BytesWritten != 0 || out2.Len() != 0 {
			t.Fatalf("mode %v: expected zero bytes on no-op frame, got %d (%q)", mode, stats.BytesWritten, out2.String())
		}
	}
}

// TestSingleCellChangeCellMode is spec.md §8 scenario S2: a one
// character change should dirty exactly one cell in Cell mode.
func TestSingleCellChangeCellMode(t *testing.T) {
	b := New(30, 1)
	b.StageLine(0, "ABCDEF", cellgrid.Default, cellgrid.Default)
	var out strings.Builder
	if _, err := b.Flush(&out, Cell); err != nil {
		t.Fatal(err)
	}

	b.StageLine(0, "ABXDEF", cellgrid.Default, cellgrid.Default)
	var out2 strings.Builder
	stats, err := b.Flush(&out2, Cell)
	if err != nil {
		t.Fatal(err)
	}
	if stats.CellsWritten != 1 {
		t.Errorf("expected 1 dirty cell, got %d", stats.CellsWritten)
	}
	if stats.CellsWritten > 10 {
		t.Errorf("cells written too high: %d", stats.CellsWritten)
	}
	if stats.BytesWritten == 0 {
		t.Errorf("expected nonzero bytes written")
	}
}

func TestResizePreservesOverlapAndInvalidates(t *testing.T) {
	b := New(5, 2)
	b.StageAt(0, 0, "hi", cellgrid.Default, cellgrid.Default)
	b.Flush(&strings.Builder{}, Line)

	b.Resize(8, 3)
	if b.DirtyLineCount() == 0 {
		t.Fatal("resize should mark all lines dirty")
	}
	if b.Front.CellAt(0, 0).Char != 'h' {
		t.Errorf("resize should preserve overlap on front, got %q", b.Front.CellAt(0, 0).Char)
	}
}
