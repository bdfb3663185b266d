package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before
// this one completed. Its result was discarded and state was not touched.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// Source produces the mapped earthquake list for one refresh.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]domain.Earthquake, error)
}

// RefreshOptions controls a single refresh. Limit <= 0 uses the store default.
type RefreshOptions struct {
	FirstLoad bool
	Limit     int
}

// Store holds the current earthquake list and drives the refresh state machine.
// At most one refresh is authoritative: starting a refresh cancels the
// outstanding one, whose result is then discarded.
type Store struct {
	source       Source
	defaultLimit int
	metrics      *observability.Metrics
	logger       *slog.Logger

	// emitMu orders state transitions with their notifications.
	emitMu sync.Mutex

	mu          sync.RWMutex
	state       UiState
	held        []domain.Earthquake
	hasData     bool
	lastUpdated time.Time
	gen         uint64
	cancel      context.CancelFunc

	listeners listeners[UiState]
}

// New creates a Store in the Loading state.
func New(source Source, defaultLimit int, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		source:       source,
		defaultLimit: defaultLimit,
		metrics:      metrics,
		logger:       logger,
		state:        Loading(),
	}
}

// State returns a snapshot of the current UiState.
func (s *Store) State() UiState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// OnStateChange registers fn for every state transition. fn is called once
// immediately with the current state. Listeners run synchronously and must
// not call Refresh.
func (s *Store) OnStateChange(fn func(UiState)) (unsubscribe func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	remove := s.listeners.add(fn)
	fn(s.State())
	return remove
}

// LastUpdated reports when the held list was last replaced by a successful fetch.
func (s *Store) LastUpdated() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated, s.hasData
}

// heldSnapshot returns a copy of the last successfully fetched list and its time.
func (s *Store) heldSnapshot() ([]domain.Earthquake, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.held), s.lastUpdated
}

// Quake returns the record with id from the held list.
func (s *Store) Quake(id string) (domain.Earthquake, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.held, func(q domain.Earthquake) bool { return q.ID == id })
	if i < 0 {
		return domain.Earthquake{}, false
	}
	return s.held[i], true
}

// Refresh fetches a new list and applies it. It blocks until the fetch
// completes. On failure with data already held the previous list stays
// visible and the fetch error is still returned.
func (s *Store) Refresh(ctx context.Context, opts RefreshOptions) error {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	start := time.Now()

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen := s.begin(opts.FirstLoad, cancel)

	quakes, err := s.source.Fetch(fetchCtx, limit)

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.metrics.Refreshes.WithLabelValues("superseded").Inc()
		s.logger.Debug("refresh result discarded", "generation", gen)
		return ErrSuperseded
	}
	s.cancel = nil

	var outcome string
	switch {
	case err == nil:
		outcome = "success"
		s.held = slices.Clone(quakes)
		s.hasData = true
		s.lastUpdated = domain.Now()
		s.state = Success(s.held, false)
	case s.hasData:
		outcome = "stale"
		s.state = Success(s.held, false)
	default:
		outcome = "error"
		s.state = Failed(domain.ErrorMessage(err))
	}
	next := s.state.clone()
	held := len(s.held)
	s.mu.Unlock()

	s.metrics.RefreshInFlight.Set(0)
	s.metrics.QuakesHeld.Set(float64(held))
	s.metrics.Refreshes.WithLabelValues(outcome).Inc()
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	switch outcome {
	case "success":
		s.logger.Info("refresh complete", "quake_count", held, "duration", time.Since(start))
	case "stale":
		s.logger.Warn("refresh failed, keeping previous list", "error", err, "error_kind", domain.ErrorKind(err), "quake_count", held)
	default:
		s.logger.Error("refresh failed", "error", err, "error_kind", domain.ErrorKind(err))
	}

	s.listeners.emit(next)
	return err
}

// begin supersedes any outstanding refresh and moves to Loading or
// Success(refreshing). It returns the generation of the new refresh.
func (s *Store) begin(firstLoad bool, cancel context.CancelFunc) uint64 {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel

	if firstLoad || !s.hasData {
		s.state = Loading()
	} else {
		s.state = Success(s.held, true)
	}
	next := s.state.clone()
	s.mu.Unlock()

	s.metrics.RefreshInFlight.Set(1)
	s.listeners.emit(next)
	return gen
}
