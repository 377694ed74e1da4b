package cellgrid

import "testing"

func TestSetGetRoundTrip(t *testing.T) {
	g := NewGrid(10, 5)
	if err := g.Set(3, 2, 'X', RGB(255, 0, 0), Default, Attrs{Bold: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c, err := g.Get(3, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Char != 'X' || !c.Attrs.Bold {
		t.Errorf("got %+v", c)
	}
}

func TestSetGetOutOfRange(t *testing.T) {
	g := NewGrid(10, 5)
	if err := g.Set(-1, 0, 'X', Default, Default, Attrs{}); err == nil {
		t.Fatal("expected InvalidBounds error")
	}
	if _, err := g.Get(10, 0); err == nil {
		t.Fatal("expected InvalidBounds error")
	}
}

func TestWriteClipsSilently(t *testing.T) {
	g := NewGrid(5, 1)
	g.Write(3, 0, "hello", Default, Default)
	c := g.CellAt(4, 0)
	if c.Char != 'e' {
		t.Errorf("expected clipped write to stop at edge, got %q at col 4", c.Char)
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	g := NewGrid(4, 2)
	g.Set(1, 1, 'Z', Default, Default, Attrs{})
	g.Resize(6, 3)
	c := g.CellAt(1, 1)
	if c.Char != 'Z' {
		t.Errorf("overlap cell lost on resize: %+v", c)
	}
	c2 := g.CellAt(5, 2)
	if c2.Char != ' ' {
		t.Errorf("new area should be blank, got %q", c2.Char)
	}
}

func TestWriteAbsorbsTrailingEscape(t *testing.T) {
	g := NewGrid(10, 1)
	g.Write(0, 0, "hi\x1b[0m", Default, Default)
	if g.TrailingEscapeAt(0) != "\x1b[0m" {
		t.Errorf("expected trailing escape to be parked on row 0, got %q", g.TrailingEscapeAt(0))
	}
}

func TestWriteAbsorbsLeadingEscapeIntoNextCell(t *testing.T) {
	g := NewGrid(10, 1)
	g.Write(0, 0, "\x1b[31mR", Default, Default)
	c := g.CellAt(0, 0)
	if c.AnsiEscape != "\x1b[31m" || c.Char != 'R' {
		t.Errorf("got %+v", c)
	}
}

func TestBoxDrawsCorners(t *testing.T) {
	g := NewGrid(5, 5)
	g.Box(Rect{X: 0, Y: 0, W: 5, H: 5}, BoxChars{TL: '┌', TR: '┐', BL: '└', BR: '┘', H: '─', V: '│'}, Default, Default)
	if g.CellAt(0, 0).Char != '┌' || g.CellAt(4, 4).Char != '┘' {
		t.Errorf("corners not drawn: %+v %+v", g.CellAt(0, 0), g.CellAt(4, 4))
	}
	if g.CellAt(2, 0).Char != '─' {
		t.Errorf("top edge not drawn: %+v", g.CellAt(2, 0))
	}
}
