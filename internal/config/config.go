package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// maxFeedLimit is the largest page the USGS event service will return.
const maxFeedLimit = 20000

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Feed endpoint configuration.
	FeedBaseURL     string
	FeedPath        string
	FeedTimeout     time.Duration
	FeedLimit       int
	FeedMinInterval time.Duration

	PollInterval    time.Duration
	DisplayLocation *time.Location

	// Snapshot publishing configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parseDuration("FEED_TIMEOUT", "10s")
	if err != nil || feedTimeout <= 0 {
		return nil, errors.New("invalid FEED_TIMEOUT")
	}

	minInterval, err := parseDuration("FEED_MIN_INTERVAL", "1s")
	if err != nil || minInterval < 0 {
		return nil, errors.New("invalid FEED_MIN_INTERVAL")
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", "5m")
	if err != nil || pollInterval < 0 {
		return nil, errors.New("invalid POLL_INTERVAL")
	}

	feedLimit, err := strconv.Atoi(sharedcfg.EnvOrDefault("FEED_LIMIT", "100"))
	if err != nil || feedLimit < 1 || feedLimit > maxFeedLimit {
		return nil, errors.New("invalid FEED_LIMIT: must be between 1 and 20000")
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "Local"))
	if err != nil {
		return nil, errors.New("invalid DISPLAY_TIMEZONE")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedBaseURL:     sharedcfg.EnvOrDefault("FEED_BASE_URL", "https://earthquake.usgs.gov/"),
		FeedPath:        sharedcfg.EnvOrDefault("FEED_PATH", "fdsnws/event/1/query"),
		FeedTimeout:     feedTimeout,
		FeedLimit:       feedLimit,
		FeedMinInterval: minInterval,

		PollInterval:    pollInterval,
		DisplayLocation: loc,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquake-snapshots"),
	}

	u, err := url.Parse(cfg.FeedBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("invalid FEED_BASE_URL: must be an absolute http(s) URL")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	return time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
}
