package control

import "github.com/consolewm/consolewm/driver"

// Scroll is a container control wrapping a single child in a viewport
// narrower/shorter than the child's desired size, per spec.md §4.C4
// "Scrollable container". It exposes its offset so layout can compute
// visible region subtraction and so dispatch can bubble unhandled
// wheel events up to it.
type Scroll struct {
	Base
	Child    Control
	OffsetX  int
	OffsetY  int
	contentW int
	contentH int
	viewW    int
	viewH    int
	self     ID
}

// NewScroll wraps child in a viewport.
func NewScroll(child Control) *Scroll {
	s := &Scroll{Child: child}
	child.SetContainerBackRef(s.self)
	return s
}

func (s *Scroll) SetID(id ID) {
	s.self = id
	s.Child.SetContainerBackRef(id)
}

func (s *Scroll) Children() []Control { return []Control{s.Child} }

func (s *Scroll) MeasureDesired(availW, availH int) (int, int) {
	s.viewW, s.viewH = availW, availH
	s.contentW, s.contentH = s.Child.MeasureDesired(availW, -1)
	return availW, availH
}

func (s *Scroll) Render(availW, availH int) []string { return nil }

// clamp keeps OffsetX/OffsetY within [0, content-view], per spec.md §8
// invariant 6 (scroll clamping).
func (s *Scroll) clamp() {
	s.OffsetX = clampInt(s.OffsetX, 0, maxInt(0, s.contentW-s.viewW))
	s.OffsetY = clampInt(s.OffsetY, 0, maxInt(0, s.contentH-s.viewH))
}

// ScrollChildIntoView re-clamps the current offset to the content range;
// it does not move the viewport toward the child's bounds. A Scroll has
// only one child, s.Child.
func (s *Scroll) ScrollChildIntoView(_ ID) {
	s.clamp()
}

// ProcessMouse handles wheel actions by adjusting OffsetY; any other
// mouse action is left unhandled for the child to consume.
func (s *Scroll) ProcessMouse(ev driver.MouseEvent) bool {
	switch ev.Action {
	case driver.ActionWheelUp:
		s.OffsetY -= 3
		s.clamp()
		return true
	case driver.ActionWheelDown:
		s.OffsetY += 3
		s.clamp()
		return true
	}
	return false
}

func (s *Scroll) WantsMouse() bool { return true }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
