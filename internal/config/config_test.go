package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker = "localhost:9092"
	testFeedURL   = "http://feed.test/"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://earthquake.usgs.gov/", cfg.FeedBaseURL)
	assert.Equal(t, "fdsnws/event/1/query", cfg.FeedPath)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 100, cfg.FeedLimit)
	assert.Equal(t, time.Second, cfg.FeedMinInterval)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, time.Local, cfg.DisplayLocation)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "earthquake-snapshots", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("FEED_BASE_URL", testFeedURL)
	t.Setenv("FEED_PATH", "earthquakes/feed/v1.0/summary/all_day.geojson")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("FEED_LIMIT", "250")
	t.Setenv("FEED_MIN_INTERVAL", "0s")
	t.Setenv("POLL_INTERVAL", "0")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testFeedURL, cfg.FeedBaseURL)
	assert.Equal(t, "earthquakes/feed/v1.0/summary/all_day.geojson", cfg.FeedPath)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 250, cfg.FeedLimit)
	assert.Zero(t, cfg.FeedMinInterval)
	assert.Zero(t, cfg.PollInterval)
	assert.Equal(t, time.UTC, cfg.DisplayLocation)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FEED_TIMEOUT", "bad"},
		{"FEED_TIMEOUT", "0s"},
		{"FEED_MIN_INTERVAL", "-1s"},
		{"POLL_INTERVAL", "soon"},
		{"POLL_INTERVAL", "-5m"},
		{"FEED_LIMIT", "0"},
		{"FEED_LIMIT", "20001"},
		{"FEED_LIMIT", "many"},
		{"DISPLAY_TIMEZONE", "Mars/Olympus_Mons"},
		{"FEED_BASE_URL", "ftp://earthquake.usgs.gov/"},
		{"FEED_BASE_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaDisabledUnlessTrue(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "yes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
