package wm

import "testing"

func newTestWindow() *Window {
	return &Window{Width: 10, Height: 10}
}

// TestZMonotonicity is spec.md §8 invariant 8.
func TestZMonotonicity(t *testing.T) {
	s := NewState()
	a := newTestWindow()
	b := newTestWindow()
	c := newTestWindow()
	s.Register(a, false)
	s.Register(b, false)
	s.Register(c, false)

	s.BringToFront(a.ID)
	for _, w := range []*Window{b, c} {
		if a.Z <= w.Z {
			t.Errorf("expected a.Z > %v.Z after BringToFront, got a.Z=%d other.Z=%d", w.ID, a.Z, w.Z)
		}
	}

	s.SendToBack(c.ID)
	for _, w := range []*Window{a, b} {
		if c.Z >= w.Z {
			t.Errorf("expected c.Z < %v.Z after SendToBack, got c.Z=%d other.Z=%d", w.ID, c.Z, w.Z)
		}
	}
}

// TestModalBlocksParent is spec.md scenario S7.
func TestModalBlocksParent(t *testing.T) {
	s := NewState()
	p := newTestWindow()
	m := newTestWindow()
	s.Register(p, true)
	s.Register(m, false)
	m.SetParent(p.ID)
	s.ModalPush(m.ID, p.ID)

	target, blocked := s.SetActive(p.ID)
	if !blocked {
		t.Errorf("expected activating p to be redirected")
	}
	if target != m.ID {
		t.Errorf("expected redirect target to be the modal %v, got %v", m.ID, target)
	}
	if s.Active() != m.ID {
		t.Errorf("expected modal to become active, got %v", s.Active())
	}
}

func TestFocusUniquenessAcrossActivation(t *testing.T) {
	s := NewState()
	a := newTestWindow()
	b := newTestWindow()
	s.Register(a, true)
	s.Register(b, true)

	if a.Flags.IsActive {
		t.Errorf("expected a to be deactivated once b becomes active")
	}
	if !b.Flags.IsActive {
		t.Errorf("expected b to be active")
	}
}
