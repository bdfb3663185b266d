package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
)

// FeedFetcher retrieves one raw feed payload.
type FeedFetcher interface {
	Fetch(ctx context.Context, q domain.FeedQuery) (*domain.FeedResponse, error)
}

// FeedSource implements store.Source by fetching the feed and mapping it
// into earthquake records.
type FeedSource struct {
	fetcher      FeedFetcher
	minMagnitude *float64
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewFeedSource creates a FeedSource. minMagnitude, when set, is passed
// upstream so the feed only returns events at or above it.
func NewFeedSource(fetcher FeedFetcher, minMagnitude *float64, metrics *observability.Metrics, logger *slog.Logger) *FeedSource {
	return &FeedSource{
		fetcher:      fetcher,
		minMagnitude: minMagnitude,
		metrics:      metrics,
		logger:       logger,
	}
}

// Fetch returns up to limit mapped earthquakes in feed order.
func (s *FeedSource) Fetch(ctx context.Context, limit int) ([]domain.Earthquake, error) {
	resp, err := s.fetcher.Fetch(ctx, domain.FeedQuery{Limit: limit, MinMagnitude: s.minMagnitude})
	if err != nil {
		return nil, err
	}

	result, err := domain.MapFeed(resp)
	if err != nil {
		s.metrics.MappingErrors.Inc()
		return nil, err
	}

	for _, skipped := range result.Skipped {
		s.logger.Warn("feed feature skipped",
			"index", skipped.Index,
			"id", skipped.ID,
			"reason", skipped.Reason,
		)
	}
	s.metrics.FeaturesSkipped.Add(float64(len(result.Skipped)))
	s.metrics.FeaturesMapped.Add(float64(len(result.Quakes)))

	return result.Quakes, nil
}
