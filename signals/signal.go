// Package signals is a small fine-grained reactive primitive used by
// theme.Theme to propagate a live palette swap to every window that
// reads it, without the compositor having to walk the window list
// itself. It purposefully does not drive the compositor's own dirty
// tracking — spec.md §4.C8/C9 specify that windows carry explicit
// IsDirty/Invalidate state, and that remains the mechanism the
// scheduler and compositor use frame to frame. Instead the compositor
// registers one Effect that reads the Theme's fields: when one changes,
// the effect re-runs and invalidates every open window, nothing more.
package signals

import (
	"reflect"
	"sync"
)

// Getter is a type-erased read handle, implemented by Signal and
// Computed.
type Getter interface {
	GetValue() interface{}
}

// Dependency is anything a Subscriber can depend on.
type Dependency interface {
	subscribe(s Subscriber)
	unsubscribe(s Subscriber)
}

// Subscriber is anything that depends on one or more Dependencies.
type Subscriber interface {
	onDependencyUpdated()
	addDependency(d Dependency)
}

var (
	activeSubscriber Subscriber
	activeMu         sync.Mutex

	batchDepth int
	batchQueue map[Subscriber]struct{}
	batchMu    sync.Mutex
)

// Batch defers subscriber notification until fn returns, so a
// multi-field theme swap invalidates each dependent window once
// instead of once per changed field.
func Batch(fn func()) {
	batchMu.Lock()
	batchDepth++
	batchMu.Unlock()

	defer func() {
		batchMu.Lock()
		batchDepth--
		if batchDepth == 0 && len(batchQueue) > 0 {
			queue := batchQueue
			batchQueue = nil
			batchMu.Unlock()
			for sub := range queue {
				sub.onDependencyUpdated()
			}
		} else {
			batchMu.Unlock()
		}
	}()

	fn()
}

// Signal is a reactive value: reading it inside an Effect subscribes
// that effect to future writes.
type Signal[T any] struct {
	value       T
	subscribers map[Subscriber]struct{}
	mu          sync.RWMutex
}

// New creates a Signal holding val.
func New[T any](val T) *Signal[T] {
	return &Signal[T]{value: val, subscribers: make(map[Subscriber]struct{})}
}

func (s *Signal[T]) subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub] = struct{}{}
}

func (s *Signal[T]) unsubscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

func (s *Signal[T]) GetValue() interface{} { return s.Get() }

// Get reads the value, registering the currently active subscriber
// (if any) as a dependent.
func (s *Signal[T]) Get() T {
	activeMu.Lock()
	current := activeSubscriber
	activeMu.Unlock()

	if current != nil {
		current.addDependency(s)
		s.subscribe(current)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek reads the value without registering a dependency.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set writes a new value and notifies subscribers, unless val is
// deeply equal to the current value.
func (s *Signal[T]) Set(val T) {
	s.mu.Lock()
	if reflect.DeepEqual(s.value, val) {
		s.mu.Unlock()
		return
	}
	s.value = val

	subs := make([]Subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.onDependencyUpdated()
	}
}

// Computed is a derived, memoized value recomputed lazily the first
// time it is read after a dependency changes.
type Computed[T any] struct {
	fn           func() T
	value        T
	dirty        bool
	dependencies map[Dependency]struct{}
	subscribers  map[Subscriber]struct{}
	mu           sync.Mutex
}

// NewComputed creates a Computed that lazily evaluates fn.
func NewComputed[T any](fn func() T) *Computed[T] {
	return &Computed[T]{
		fn:           fn,
		dirty:        true,
		dependencies: make(map[Dependency]struct{}),
		subscribers:  make(map[Subscriber]struct{}),
	}
}

func (c *Computed[T]) subscribe(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[sub] = struct{}{}
}

func (c *Computed[T]) unsubscribe(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, sub)
}

func (c *Computed[T]) addDependency(d Dependency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dependencies[d] = struct{}{}
}

func (c *Computed[T]) onDependencyUpdated() {
	c.mu.Lock()
	if c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	subs := make([]Subscriber, 0, len(c.subscribers))
	for sub := range c.subscribers {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.onDependencyUpdated()
	}
}

func (c *Computed[T]) GetValue() interface{} { return c.Get() }

// Get returns the memoized value, recomputing it first if a dependency
// changed since the last compute.
func (c *Computed[T]) Get() T {
	activeMu.Lock()
	current := activeSubscriber
	activeMu.Unlock()

	if current != nil {
		current.addDependency(c)
		c.subscribe(current)
	}

	c.mu.Lock()
	if c.dirty {
		for dep := range c.dependencies {
			dep.unsubscribe(c)
		}
		c.dependencies = make(map[Dependency]struct{})

		activeMu.Lock()
		prev := activeSubscriber
		activeSubscriber = c
		activeMu.Unlock()

		c.mu.Unlock()
		val := c.fn()
		c.mu.Lock()

		c.value = val
		c.dirty = false

		activeMu.Lock()
		activeSubscriber = prev
		activeMu.Unlock()
	}
	defer c.mu.Unlock()
	return c.value
}

// Effect re-runs fn every time a Signal or Computed it read last time
// changes.
type Effect struct {
	fn           func()
	dependencies map[Dependency]struct{}
	mu           sync.Mutex
	disposed     bool
}

// CreateEffect runs fn once immediately, then on every future change
// to a dependency it reads.
func CreateEffect(fn func()) *Effect {
	e := &Effect{fn: fn, dependencies: make(map[Dependency]struct{})}
	e.Run()
	return e
}

func (e *Effect) addDependency(d Dependency) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dependencies[d] = struct{}{}
}

func (e *Effect) onDependencyUpdated() {
	batchMu.Lock()
	if batchDepth > 0 {
		if batchQueue == nil {
			batchQueue = make(map[Subscriber]struct{})
		}
		batchQueue[e] = struct{}{}
		batchMu.Unlock()
		return
	}
	batchMu.Unlock()
	e.Run()
}

// Run re-executes fn, recomputing the dependency set from scratch.
func (e *Effect) Run() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	oldDeps := e.dependencies
	e.dependencies = make(map[Dependency]struct{})
	e.mu.Unlock()

	for dep := range oldDeps {
		dep.unsubscribe(e)
	}

	activeMu.Lock()
	prev := activeSubscriber
	activeSubscriber = e
	activeMu.Unlock()

	e.fn()

	activeMu.Lock()
	activeSubscriber = prev
	activeMu.Unlock()
}

// Dispose stops the effect from re-running and unsubscribes it from
// every dependency it currently holds.
func (e *Effect) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	for dep := range e.dependencies {
		dep.unsubscribe(e)
	}
	e.dependencies = nil
}
