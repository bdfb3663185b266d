package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quakewatch-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quakewatch-service/internal/adapter/kafka"
	"github.com/couchcryptid/quakewatch-service/internal/adapter/usgs"
	"github.com/couchcryptid/quakewatch-service/internal/config"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
	"github.com/couchcryptid/quakewatch-service/internal/pipeline"
	"github.com/couchcryptid/quakewatch-service/internal/store"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := usgs.NewClient(cfg.FeedBaseURL, cfg.FeedPath, cfg.FeedTimeout, cfg.FeedMinInterval, metrics, logger)
	source := pipeline.NewFeedSource(client, nil, metrics, logger)

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var publisher store.SnapshotPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	sess := store.NewSession(
		store.New(source, cfg.FeedLimit, metrics, logger),
		store.NewSelection(),
		publisher,
		metrics,
		logger,
	)
	poller := pipeline.NewPoller(sess, cfg.PollInterval, clockwork.NewRealClock(), logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, cfg.DisplayLocation, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return poller.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
