package wm

import (
	"sync"

	"github.com/consolewm/consolewm/wmerrors"
	"github.com/consolewm/consolewm/wmlog"
)

// State is the concurrent window-state service: an ordered set of
// windows keyed by id, Z-index assignment, the modal stack, and the
// global active-window pointer (spec.md §4.C9, §5 "window-state
// service uses a concurrent ordered map").
type State struct {
	mu       sync.Mutex
	windows  map[ID]*Window
	order    []ID // insertion order, used only for iteration stability
	nextID   ID
	minZ     int64
	maxZ     int64
	active   ID
	modals   map[ID]ID // modal window id -> parent id
	modalSeq []ID      // push order, most recent last
}

// NewState returns an empty window-state service.
func NewState() *State {
	return &State{
		windows: make(map[ID]*Window),
		modals:  make(map[ID]ID),
	}
}

// Register adds w to the state, assigning it the next id if w.ID is
// zero, bumping it to the top Z, and optionally activating it.
func (s *State) Register(w *Window, activate bool) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	w.ID = s.nextID
	s.maxZ++
	w.Z = s.maxZ
	s.windows[w.ID] = w
	s.order = append(s.order, w.ID)

	if activate {
		s.setActiveLocked(w.ID)
	}
	return w.ID
}

// Unregister removes w from the state (called after CompleteClose).
func (s *State) Unregister(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, id)
	delete(s.modals, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for i, o := range s.modalSeq {
		if o == id {
			s.modalSeq = append(s.modalSeq[:i], s.modalSeq[i+1:]...)
			break
		}
	}
	if s.active == id {
		s.active = 0
	}
}

// Get returns the window registered under id, or nil.
func (s *State) Get(id ID) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[id]
}

// Windows returns a snapshot of all registered windows in insertion
// order.
func (s *State) Windows() []*Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Window, 0, len(s.order))
	for _, id := range s.order {
		if w, ok := s.windows[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// BringToFront gives w.z = max_z + 1 (spec.md §4.C9 Z assignment,
// invariant 8).
func (s *State) BringToFront(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[id]
	if !ok {
		return
	}
	s.maxZ++
	w.Z = s.maxZ
}

// SendToBack gives w.z = min_z - 1 (invariant 8).
func (s *State) SendToBack(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[id]
	if !ok {
		return
	}
	s.minZ--
	w.Z = s.minZ
}

// Active returns the id of the currently active window, or 0 if none.
func (s *State) Active() ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive activates id, honoring modal blocking: if id (or any
// ancestor in its parent chain) is blocked by a modal descendant, the
// call redirects to effective_activation_target instead (spec.md
// §4.C9 set_active).
func (s *State) SetActive(id ID) (activated ID, blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.effectiveActivationTargetLocked(id)
	if target != id {
		s.setActiveLocked(target)
		wmlog.Get().Debug("activation redirected to modal descendant",
			"requested", id, "redirected_to", target, "error", wmerrors.ErrModalBlocked)
		return target, true
	}
	s.setActiveLocked(id)
	return id, false
}

func (s *State) setActiveLocked(id ID) {
	if prev, ok := s.windows[s.active]; ok && s.active != id {
		prev.Lock()
		prev.Flags.IsActive = false
		prev.Flags.IsDirty = true
		prev.Unlock()
	}
	s.active = id
	if w, ok := s.windows[id]; ok {
		w.Lock()
		w.Flags.IsActive = true
		w.Flags.IsDirty = true
		w.Unlock()
		s.maxZ++
		w.Z = s.maxZ
	}
}

// CycleActive moves the active window forward (dir > 0) or backward
// (dir < 0) through registration order, skipping windows blocked by a
// modal.
func (s *State) CycleActive(dir int) ID {
	s.mu.Lock()
	ids := make([]ID, 0, len(s.order))
	for _, id := range s.order {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	if len(ids) == 0 {
		return 0
	}

	idx := 0
	for i, id := range ids {
		if id == s.Active() {
			idx = i
			break
		}
	}
	n := len(ids)
	for step := 1; step <= n; step++ {
		next := ((idx+dir*step)%n + n) % n
		target, blocked := s.SetActive(ids[next])
		if !blocked {
			return target
		}
	}
	return s.Active()
}

// ModalPush registers w as a modal child of parent.
func (s *State) ModalPush(w ID, parent ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modals[w] = parent
	s.modalSeq = append(s.modalSeq, w)
}

// ModalPop removes w from the modal stack.
func (s *State) ModalPop(w ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.modals, w)
	for i, o := range s.modalSeq {
		if o == w {
			s.modalSeq = append(s.modalSeq[:i], s.modalSeq[i+1:]...)
			break
		}
	}
}

// EffectiveActivationTarget redirects to the deepest active modal
// descendant of id, if any (spec.md §4.C9, Glossary "Modal
// descendant").
func (s *State) EffectiveActivationTarget(id ID) ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveActivationTargetLocked(id)
}

func (s *State) effectiveActivationTargetLocked(id ID) ID {
	current := id
	for {
		child := s.deepestModalChildLocked(current)
		if child == 0 || child == current {
			return current
		}
		current = child
	}
}

// deepestModalChildLocked returns the most-recently-pushed modal whose
// parent is of, or of is itself if none.
func (s *State) deepestModalChildLocked(of ID) ID {
	for i := len(s.modalSeq) - 1; i >= 0; i-- {
		child := s.modalSeq[i]
		if s.modals[child] == of {
			return child
		}
	}
	return of
}

// IsBlockedByModal reports whether id has any modal descendant
// currently registered (used to decide whether a click should flash
// the blocker per spec.md scenario S7).
func (s *State) IsBlockedByModal(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveActivationTargetLocked(id) != id
}
