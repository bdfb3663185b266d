package usgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
	"golang.org/x/time/rate"
)

// queryTimeLayout is the ISO-8601 form the event service accepts for starttime/endtime.
const queryTimeLayout = "2006-01-02T15:04:05"

// maxErrorBody caps how much of a non-2xx body is kept in the error message.
const maxErrorBody = 512

// Client fetches GeoJSON earthquake feeds from the USGS event service.
type Client struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for baseURL joined with path. Consecutive
// requests are spaced at least minInterval apart; zero disables spacing.
func NewClient(baseURL, path string, timeout, minInterval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: joinURL(baseURL, path),
		limiter:  newLimiter(minInterval),
		metrics:  metrics,
		logger:   logger,
	}
}

func newLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Fetch performs one GET against the feed endpoint and decodes the body.
// Failures are *domain.TransportError or *domain.ParseError.
func (c *Client) Fetch(ctx context.Context, q domain.FeedQuery) (*domain.FeedResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.FeedRequests.WithLabelValues("transport_error").Inc()
		return nil, &domain.TransportError{Err: fmt.Errorf("wait for request slot: %w", err)}
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, q)
	c.metrics.FeedRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FeedRequests.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	c.metrics.FeedRequests.WithLabelValues("success").Inc()
	c.logger.Debug("feed fetched", "feature_count", len(resp.Features), "duration", time.Since(start))
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, q domain.FeedQuery) (*domain.FeedResponse, error) {
	fullURL := c.endpoint + "?" + queryParams(q).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("usgs API error: %s", strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return domain.DecodeFeed(body)
}

// queryParams builds the event service query for q.
func queryParams(q domain.FeedQuery) url.Values {
	params := url.Values{
		"format":  {"geojson"},
		"orderby": {"time"},
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if !q.StartTime.IsZero() {
		params.Set("starttime", q.StartTime.UTC().Format(queryTimeLayout))
	}
	if !q.EndTime.IsZero() {
		params.Set("endtime", q.EndTime.UTC().Format(queryTimeLayout))
	}
	if q.MinMagnitude != nil {
		params.Set("minmagnitude", strconv.FormatFloat(*q.MinMagnitude, 'f', -1, 64))
	}
	return params
}

func outcome(err error) string {
	var parseErr *domain.ParseError
	if errors.As(err, &parseErr) {
		return "parse_error"
	}
	return "transport_error"
}
