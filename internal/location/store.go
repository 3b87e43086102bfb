// ABOUTME: Location state container shared by the acquisition components
// ABOUTME: Single writer for position, permission and loading with change listeners

package location

import (
	"sync"

	"github.com/harper/hazardwatch/internal/models"
)

// Snapshot is a consistent view of the store.
type Snapshot struct {
	Position   *models.Position
	Permission models.PermissionState
	Loading    bool
}

// Store holds the latest fix, the permission state and the in-flight status.
// Writes come only from Source and Tracker in this package.
type Store struct {
	mu         sync.RWMutex
	position   *models.Position
	permission models.PermissionState
	inFlight   int

	listenersMu sync.Mutex
	listeners   map[int]func(Snapshot)
	nextID      int
}

// NewStore creates an empty store in the prompt state.
func NewStore() *Store {
	return &Store{
		permission: models.PermissionPrompt,
		listeners:  make(map[int]func(Snapshot)),
	}
}

// Position returns the latest fix, if any.
func (s *Store) Position() (models.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.position == nil {
		return models.Position{}, false
	}
	return *s.position, true
}

// Permission returns the current permission state.
func (s *Store) Permission() models.PermissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

// Loading reports whether a single-shot request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Snapshot returns all fields read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Permission: s.permission, Loading: s.inFlight > 0}
	if s.position != nil {
		p := *s.position
		snap.Position = &p
	}
	return snap
}

// OnChange registers fn to be called after every state change.
// The returned func removes the listener.
func (s *Store) OnChange(fn func(Snapshot)) (remove func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// releaseListeners drops every registered listener.
func (s *Store) releaseListeners() {
	s.listenersMu.Lock()
	s.listeners = make(map[int]func(Snapshot))
	s.listenersMu.Unlock()
}

// publish runs outside the state lock.
func (s *Store) publish(snap Snapshot) {
	s.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// setFix replaces the position and records the grant. Last write wins.
func (s *Store) setFix(pos models.Position) {
	s.mu.Lock()
	p := pos
	s.position = &p
	s.permission = Transition(s.permission, EventFixAcquired)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// apply feeds ev through the permission state machine.
func (s *Store) apply(ev PermissionEvent) {
	s.mu.Lock()
	prev := s.permission
	s.permission = Transition(prev, ev)
	changed := s.permission != prev
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.publish(snap)
	}
}

func (s *Store) beginRequest() {
	s.mu.Lock()
	s.inFlight++
	changed := s.inFlight == 1
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.publish(snap)
	}
}

func (s *Store) endRequest() {
	s.mu.Lock()
	if s.inFlight > 0 {
		s.inFlight--
	}
	changed := s.inFlight == 0
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.publish(snap)
	}
}
