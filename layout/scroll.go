package layout

// ClampScroll keeps offset within [0, max(0, totalLines-visible)], per
// spec.md §8 invariant 6.
func ClampScroll(offset, totalLines, visible int) int {
	maxOffset := totalLines - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

// ScrollIntoView returns the scroll offset that brings a node whose
// unscrolled bounds are [nodeY, nodeY+nodeH) within
// [topStickyH, availH-bottomStickyH), per spec.md §4.C4
// scroll_into_view. It does not recurse into ScrollableContainer
// parents; it adjusts one offset only.
func ScrollIntoView(offset, nodeY, nodeH, availH, topStickyH, bottomStickyH int) int {
	viewTop := topStickyH
	viewBottom := availH - bottomStickyH

	visTop := nodeY - offset
	visBottom := visTop + nodeH

	if visTop < viewTop {
		offset -= viewTop - visTop
	} else if visBottom > viewBottom {
		offset += visBottom - viewBottom
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
