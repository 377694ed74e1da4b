package region

import (
	"testing"

	"github.com/consolewm/consolewm/cellgrid"
)

func totalArea(rects []cellgrid.Rect) int {
	sum := 0
	for _, r := range rects {
		sum += r.W * r.H
	}
	return sum
}

func TestSubtractNoOccluderReturnsWhole(t *testing.T) {
	base := cellgrid.Rect{X: 0, Y: 0, W: 10, H: 10}
	out := Subtract(base, nil)
	if len(out) != 1 || out[0] != base {
		t.Errorf("expected unchanged base, got %+v", out)
	}
}

func TestSubtractFullyCoveredReturnsEmpty(t *testing.T) {
	base := cellgrid.Rect{X: 0, Y: 0, W: 10, H: 10}
	occ := cellgrid.Rect{X: 0, Y: 0, W: 10, H: 10}
	if !FullyCovered(base, []cellgrid.Rect{occ}) {
		t.Errorf("expected fully covered")
	}
}

func TestSubtractCenterOccluderLeavesFourStrips(t *testing.T) {
	base := cellgrid.Rect{X: 0, Y: 0, W: 10, H: 10}
	occ := cellgrid.Rect{X: 3, Y: 3, W: 4, H: 4}
	out := Subtract(base, []cellgrid.Rect{occ})
	if totalArea(out) != base.W*base.H-occ.W*occ.H {
		t.Errorf("expected area %d, got %d (%+v)", base.W*base.H-occ.W*occ.H, totalArea(out), out)
	}
	for _, r := range out {
		if r.Intersect(occ).W > 0 && r.Intersect(occ).H > 0 {
			t.Errorf("strip %+v overlaps occluder", r)
		}
	}
}

// TestExposedBySymmetricDifference models spec.md scenario S1.
func TestExposedBySymmetricDifference(t *testing.T) {
	old := cellgrid.Rect{X: 20, Y: 10, W: 20, H: 8}
	nw := cellgrid.Rect{X: 45, Y: 10, W: 20, H: 8}
	exposed := ExposedBySymmetricDifference(old, nw)
	if totalArea(exposed) == 0 {
		t.Errorf("expected nonzero exposed area")
	}
	pt := cellgrid.Rect{X: 30, Y: 12, W: 1, H: 1}
	found := false
	for _, r := range exposed {
		if !r.Intersect(pt).Empty() {
			found = true
		}
	}
	if !found {
		t.Errorf("expected (30,12) to be in the exposed region")
	}
}
