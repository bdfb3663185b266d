package store

import (
	"sync"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
)

// Selection tracks the one earthquake opened in the detail view, if any.
// It is independent of the store's list: a record that has since dropped
// out of the list stays selected until cleared.
type Selection struct {
	emitMu sync.Mutex

	mu      sync.RWMutex
	current *domain.Earthquake

	listeners listeners[*domain.Earthquake]
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Select sets the selection to q.
func (s *Selection) Select(q domain.Earthquake) {
	s.set(&q)
}

// Clear removes the selection.
func (s *Selection) Clear() {
	s.set(nil)
}

// Current returns the selected record and whether one is set.
func (s *Selection) Current() (domain.Earthquake, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Earthquake{}, false
	}
	return *s.current, true
}

// OnChange registers fn for every select or clear, replaying the current
// value first. A nil argument means nothing is selected.
func (s *Selection) OnChange(fn func(*domain.Earthquake)) (unsubscribe func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	remove := s.listeners.add(fn)
	fn(s.snapshot())
	return remove
}

func (s *Selection) set(q *domain.Earthquake) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = q
	s.mu.Unlock()

	s.listeners.emit(s.snapshot())
}

func (s *Selection) snapshot() *domain.Earthquake {
	q, ok := s.Current()
	if !ok {
		return nil
	}
	return &q
}
