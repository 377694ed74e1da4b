package layout

import (
	"testing"

	"github.com/consolewm/consolewm/control"
)

// TestHitTestSoundness is spec.md §8 invariant 3.
func TestHitTestSoundness(t *testing.T) {
	a := control.NewText("aaaa")
	b := control.NewText("bbbb")
	nodes, _, _ := Build([]control.Control{a, b}, 20, 10)

	hit := HitTest(nodes, 0, 1, 0)
	if hit == nil {
		t.Fatalf("expected a hit")
	}
	bounds := hit.Visible(0)
	if !bounds.Contains(0, 1) {
		t.Errorf("returned node bounds %+v do not contain (0,1)", bounds)
	}
	for _, child := range hit.Children {
		if child.Visible(0).Contains(0, 1) {
			t.Errorf("a descendant also contains the point: hit-test should return the deepest node")
		}
	}
}

func TestHitTestEmptySpaceReturnsNil(t *testing.T) {
	a := control.NewText("x")
	nodes, _, _ := Build([]control.Control{a}, 20, 10)
	if HitTest(nodes, 15, 8, 0) != nil {
		t.Errorf("expected no hit on empty space")
	}
}

func TestStickyTopReservesHeight(t *testing.T) {
	top := control.NewText("status")
	top.Sticky = control.StickyTop
	body := control.NewText("line1\nline2\nline3")
	_, topH, _ := Build([]control.Control{top, body}, 20, 10)
	if topH != 1 {
		t.Errorf("expected top sticky height 1, got %d", topH)
	}
}

func TestClampScrollWithinBounds(t *testing.T) {
	if got := ClampScroll(-5, 100, 10); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
	if got := ClampScroll(1000, 100, 10); got != 90 {
		t.Errorf("expected clamp to 90, got %d", got)
	}
}

func TestScrollIntoViewBringsNodeAboveIntoRange(t *testing.T) {
	offset := ScrollIntoView(20, 5, 1, 10, 0, 0)
	if offset != 5 {
		t.Errorf("expected offset 5 to bring nodeY=5 to top, got %d", offset)
	}
}
