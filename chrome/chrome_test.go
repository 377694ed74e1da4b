package chrome

import (
	"testing"

	"github.com/consolewm/consolewm/theme"
)

// TestTopRowWidthExact covers the "exactly width runes" invariant the
// paint package relies on when writing the row verbatim into a grid.
func TestTopRowWidthExact(t *testing.T) {
	row := TopRow(20, "Demo", true, theme.BorderSingle, Flags{ShowTitle: true, Closable: true, ShowClose: true})
	if n := len([]rune(row)); n != 20 {
		t.Errorf("expected 20 runes, got %d: %q", n, row)
	}
}

// TestBorderStyleActiveInactive is spec.md scenario S6.
func TestBorderStyleActiveInactive(t *testing.T) {
	active := Glyphs(theme.BorderDouble, true)
	if active.TL != '╔' || active.TR != '╗' || active.BL != '╚' || active.BR != '╝' {
		t.Errorf("expected double-line corners when active, got %+v", active)
	}
	inactive := Glyphs(theme.BorderDouble, false)
	if inactive.TL != '┌' || inactive.TR != '┐' || inactive.BL != '└' || inactive.BR != '┘' {
		t.Errorf("expected single-line corners when inactive, got %+v", inactive)
	}
}

func TestBottomRowResizeGrip(t *testing.T) {
	row := BottomRow(10, true, theme.BorderSingle, Flags{Resizable: true})
	r := []rune(row)
	if r[len(r)-1] != '◢' {
		t.Errorf("expected resize grip at bottom-right, got %q", row)
	}
}

func TestScrollbarThumbPosAtEdges(t *testing.T) {
	if got := ScrollbarThumbPos(0, 100, 10); got != 0 {
		t.Errorf("expected thumb at 0 when scrollOffset=0, got %d", got)
	}
	if got := ScrollbarThumbPos(90, 100, 10); got != 9 {
		t.Errorf("expected thumb at end when fully scrolled, got %d", got)
	}
}

func TestCacheReusesUnchangedParams(t *testing.T) {
	var c Cache
	top1, _ := c.Rows(20, "A", true, theme.BorderSingle, Flags{ShowTitle: true})
	top2, _ := c.Rows(20, "A", true, theme.BorderSingle, Flags{ShowTitle: true})
	if top1 != top2 {
		t.Errorf("expected identical cached rows")
	}
	top3, _ := c.Rows(20, "B", true, theme.BorderSingle, Flags{ShowTitle: true})
	if top3 == top1 {
		t.Errorf("expected cache to invalidate on title change")
	}
}
