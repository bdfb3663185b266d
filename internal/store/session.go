package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
)

// SnapshotPublisher receives each successfully refreshed list.
type SnapshotPublisher interface {
	Publish(ctx context.Context, quakes []domain.Earthquake, fetchedAt time.Time) error
}

// Session is the application context: it owns the store and the selection
// and is handed to the poller and the HTTP adapter.
type Session struct {
	store     *Store
	selection *Selection
	publisher SnapshotPublisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewSession wires a store and selection together. publisher may be nil.
func NewSession(st *Store, selection *Selection, publisher SnapshotPublisher, metrics *observability.Metrics, logger *slog.Logger) *Session {
	return &Session{
		store:     st,
		selection: selection,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Refresh runs a store refresh and publishes the new list on success.
// Publish failures are logged and never affect the returned error.
func (s *Session) Refresh(ctx context.Context, opts RefreshOptions) error {
	if err := s.store.Refresh(ctx, opts); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}

	quakes, fetchedAt := s.store.heldSnapshot()
	if err := s.publisher.Publish(ctx, quakes, fetchedAt); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("snapshot publish failed", "error", err, "quake_count", len(quakes))
		return nil
	}
	s.metrics.SnapshotsPublished.Inc()
	return nil
}

// State returns the current UiState.
func (s *Session) State() UiState { return s.store.State() }

// OnStateChange subscribes to UiState transitions.
func (s *Session) OnStateChange(fn func(UiState)) func() { return s.store.OnStateChange(fn) }

// Quake looks up id in the current list.
func (s *Session) Quake(id string) (domain.Earthquake, bool) { return s.store.Quake(id) }

// LastUpdated reports the time of the last successful refresh.
func (s *Session) LastUpdated() (time.Time, bool) { return s.store.LastUpdated() }

// Select sets the selection.
func (s *Session) Select(q domain.Earthquake) { s.selection.Select(q) }

// Clear removes the selection.
func (s *Session) Clear() { s.selection.Clear() }

// Selected returns the current selection.
func (s *Session) Selected() (domain.Earthquake, bool) { return s.selection.Current() }

// OnSelectionChange subscribes to selection changes.
func (s *Session) OnSelectionChange(fn func(*domain.Earthquake)) func() {
	return s.selection.OnChange(fn)
}

// CheckReadiness reports ready once a refresh has succeeded.
func (s *Session) CheckReadiness(_ context.Context) error {
	if _, ok := s.store.LastUpdated(); !ok {
		return errors.New("no successful refresh yet")
	}
	return nil
}
