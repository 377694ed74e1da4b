// Package layout implements the per-window Layout Tree (spec.md
// §4.C4): it walks a window's controls each invalidation and assigns
// every control an absolute rectangle within the window's content
// area, then answers hit-test and scroll-into-view queries against
// that tree.
//
// Grounded on the teacher's tui/layout_engine.go measure/arrange pass
// (box-model constraint solving, depth-first recursion into children),
// generalized from the teacher's single fixed-size-window assumption to
// spec.md's sticky-band/scroll-offset model: non-sticky siblings are
// stacked in document order the way the teacher stacks DirColumn
// children, but the stack's origin is shifted by -scroll_offset at
// paint/hit-test time rather than baked into the tree.
package layout

import (
	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/control"
)

// Node is one entry in a window's layout tree. Bounds is the control's
// rectangle as if scroll_offset were 0; callers needing the
// scroll-adjusted position use Visible.
type Node struct {
	Control  control.Control
	Bounds   cellgrid.Rect
	Sticky   control.Sticky
	Children []*Node
}

// Visible returns n's bounds shifted by -scrollOffset for non-sticky
// nodes (sticky nodes never scroll).
func (n *Node) Visible(scrollOffset int) cellgrid.Rect {
	if n.Sticky != control.StickyNone {
		return n.Bounds
	}
	b := n.Bounds
	b.Y -= scrollOffset
	return b
}

// Build arranges children within a content area of size
// (availW, availH), per spec.md §4.C4: sticky-top controls first from
// y=0 downward, sticky-bottom controls in reverse from the bottom
// upward, then non-sticky controls stacked below the top sticky band.
// Returns the root's children plus the reserved top/bottom sticky
// heights.
func Build(children []control.Control, availW, availH int) (nodes []*Node, topStickyH, bottomStickyH int) {
	var top, bottom, middle []control.Control
	for _, c := range children {
		if !c.Visible() {
			continue
		}
		switch c.StickyPosition() {
		case control.StickyTop:
			top = append(top, c)
		case control.StickyBottom:
			bottom = append(bottom, c)
		default:
			middle = append(middle, c)
		}
	}

	y := 0
	for _, c := range top {
		n := buildNode(c, availW, availH, y)
		n.Sticky = control.StickyTop
		nodes = append(nodes, n)
		y += n.Bounds.H
	}
	topStickyH = y

	// Bottom-sticky controls are laid out in reverse from the bottom up,
	// then re-sorted into document order for the returned slice.
	by := availH
	var bottomNodes []*Node
	for i := len(bottom) - 1; i >= 0; i-- {
		c := bottom[i]
		_, h := c.MeasureDesired(availW, -1)
		by -= h
		n := buildNode(c, availW, availH, by)
		n.Sticky = control.StickyBottom
		bottomNodes = append([]*Node{n}, bottomNodes...)
	}
	bottomStickyH = availH - by

	my := topStickyH
	for _, c := range middle {
		n := buildNode(c, availW, availH, my)
		nodes = append(nodes, n)
		my += n.Bounds.H
	}

	nodes = append(nodes, bottomNodes...)
	return nodes, topStickyH, bottomStickyH
}

func buildNode(c control.Control, availW, availH, y int) *Node {
	m := c.GetMargin()
	cw, ch := c.MeasureDesired(availW-m.Left-m.Right, -1)

	w := cw
	x := m.Left
	switch c.GetAlignment() {
	case control.AlignCenter:
		x = m.Left + maxi(0, (availW-m.Left-m.Right-cw)/2)
	case control.AlignRight:
		x = maxi(m.Left, availW-m.Right-cw)
	case control.AlignStretch:
		w = availW - m.Left - m.Right
	}

	n := &Node{
		Control: c,
		Bounds:  cellgrid.Rect{X: x, Y: y + m.Top, W: w, H: ch},
	}

	if container, ok := c.(control.Container); ok {
		childNodes, _, _ := Build(container.Children(), w, ch)
		n.Children = childNodes
	}

	return n
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// HitTest walks the tree depth-first, last-child-first, and returns the
// deepest node whose visible bounds contain (x,y), or nil if none do
// (spec.md §8 invariant 3).
func HitTest(nodes []*Node, x, y, scrollOffset int) *Node {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		b := n.Visible(scrollOffset)
		if !b.Contains(x, y) {
			continue
		}
		if hit := HitTest(n.Children, x-b.X, y-b.Y, 0); hit != nil {
			return hit
		}
		return n
	}
	return nil
}

// Flatten returns every node in the tree, pre-order, for Tab-order
// focus traversal.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}
