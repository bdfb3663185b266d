package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/observability"
	"github.com/couchcryptid/quakewatch-service/internal/store"
	"github.com/jonboulle/clockwork"
)

// Refresher runs one refresh of the presentation state.
type Refresher interface {
	Refresh(ctx context.Context, opts store.RefreshOptions) error
}

// Poller drives periodic refreshes. The first refresh is a first load; each
// later tick is a background refresh. A failed refresh is retried on the
// next tick only.
type Poller struct {
	refresher Refresher
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewPoller creates a Poller. An interval of zero performs only the initial load.
func NewPoller(r Refresher, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	return &Poller{
		refresher: r,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	p.refresh(ctx, true)

	if p.interval <= 0 {
		<-ctx.Done()
		p.logger.Info("poller stopping", "reason", ctx.Err())
		return nil
	}

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.refresh(ctx, false)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, firstLoad bool) {
	err := p.refresher.Refresh(ctx, store.RefreshOptions{FirstLoad: firstLoad})
	switch {
	case err == nil:
	case ctx.Err() != nil:
	case errors.Is(err, store.ErrSuperseded):
		p.logger.Debug("poll refresh superseded")
	default:
		// The store has already logged and applied the failure.
		p.logger.Debug("poll refresh failed", "error", err, "first_load", firstLoad)
	}
}
