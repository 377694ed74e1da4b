// Package region implements the Visible-Region Calculator (spec.md
// §4.C7): given a window's bounds and the set of higher-Z windows that
// overlap it, produce the maximal non-overlapping rectangles of the
// window that remain unobscured.
//
// Grounded on the teacher's rectangle math in tui/layout_engine.go
// (which clips child bounds against a parent rect using the same
// intersect/subtract primitives), generalized here from "clip to
// parent" to "subtract N occluders".
package region

import "github.com/consolewm/consolewm/cellgrid"

// Subtract returns the maximal non-overlapping rectangles of base that
// remain after removing every rectangle in occluders, processing
// occluders in order (each pass may fragment rects from the previous
// pass into up to four strips: top, bottom, left, right of the
// intersection).
func Subtract(base cellgrid.Rect, occluders []cellgrid.Rect) []cellgrid.Rect {
	rects := []cellgrid.Rect{base}
	for _, occ := range occluders {
		var next []cellgrid.Rect
		for _, r := range rects {
			next = append(next, subtractOne(r, occ)...)
		}
		rects = next
		if len(rects) == 0 {
			break
		}
	}
	return rects
}

// subtractOne splits r into up to four strips not covered by occ.
func subtractOne(r, occ cellgrid.Rect) []cellgrid.Rect {
	inter := r.Intersect(occ)
	if inter.Empty() {
		return []cellgrid.Rect{r}
	}

	var out []cellgrid.Rect

	// Strip above the intersection.
	if inter.Y > r.Y {
		out = append(out, cellgrid.Rect{X: r.X, Y: r.Y, W: r.W, H: inter.Y - r.Y})
	}
	// Strip below the intersection.
	if interBottom, rBottom := inter.Y+inter.H, r.Y+r.H; interBottom < rBottom {
		out = append(out, cellgrid.Rect{X: r.X, Y: interBottom, W: r.W, H: rBottom - interBottom})
	}
	// Strip left of the intersection, within the intersection's row band.
	if inter.X > r.X {
		out = append(out, cellgrid.Rect{X: r.X, Y: inter.Y, W: inter.X - r.X, H: inter.H})
	}
	// Strip right of the intersection, within the intersection's row band.
	if interRight, rRight := inter.X+inter.W, r.X+r.W; interRight < rRight {
		out = append(out, cellgrid.Rect{X: interRight, Y: inter.Y, W: rRight - interRight, H: inter.H})
	}

	return out
}

// FullyCovered reports whether Subtract would return no rectangles —
// i.e. base is entirely covered by the occluders.
func FullyCovered(base cellgrid.Rect, occluders []cellgrid.Rect) bool {
	return len(Subtract(base, occluders)) == 0
}

// ExposedBySymmetricDifference returns the rectangles that are in
// oldBounds but not in newBounds (the region a moved/resized window
// exposes), used by the compositor's exposed-region invalidation
// (spec.md §4.C8 step 4, invariant 7).
func ExposedBySymmetricDifference(oldBounds, newBounds cellgrid.Rect) []cellgrid.Rect {
	return Subtract(oldBounds, []cellgrid.Rect{newBounds})
}
