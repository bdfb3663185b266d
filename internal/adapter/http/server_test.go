package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/quakewatch-service/internal/adapter/http"
	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
	"github.com/couchcryptid/quakewatch-service/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventMillis int64 = 1724696400123

type sourceFunc func(ctx context.Context, limit int) ([]domain.Earthquake, error)

func (f sourceFunc) Fetch(ctx context.Context, limit int) ([]domain.Earthquake, error) {
	return f(ctx, limit)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quake(id string, mag *float64, timeMillis int64) domain.Earthquake {
	return domain.Earthquake{ID: id, Magnitude: mag, Title: "near " + id, TimeMillis: timeMillis, Lat: 33.093, Lon: -115.521, DepthKm: 6.7}
}

func mag(v float64) *float64 { return &v }

func sampleQuakes() []domain.Earthquake {
	return []domain.Earthquake{
		quake("ci1", mag(4.2), eventMillis),
		quake("us2", mag(6.1), eventMillis-60_000),
		quake("ak3", nil, eventMillis-120_000),
		quake("nc4", mag(2.0), eventMillis+60_000),
	}
}

func newSession(src store.Source) *store.Session {
	metrics := observability.NewMetricsForTesting()
	st := store.New(src, 100, metrics, discardLogger())
	return store.NewSession(st, store.NewSelection(), nil, metrics, discardLogger())
}

func newTestServer(t *testing.T, src store.Source) (*httpadapter.Server, *store.Session) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.UnixMilli(eventMillis).Add(3 * time.Hour)))
	t.Cleanup(func() { domain.SetClock(nil) })

	sess := newSession(src)
	return httpadapter.NewServer(":0", sess, time.UTC, discardLogger()), sess
}

func loadedServer(t *testing.T) (*httpadapter.Server, *store.Session) {
	t.Helper()
	srv, sess := newTestServer(t, sourceFunc(func(context.Context, int) ([]domain.Earthquake, error) {
		return sampleQuakes(), nil
	}))
	require.NoError(t, sess.Refresh(context.Background(), store.RefreshOptions{FirstLoad: true}))
	return srv, sess
}

func serve(srv http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, sourceFunc(func(context.Context, int) ([]domain.Earthquake, error) { return nil, nil }))
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/healthz").Code)
}

func TestReadyzReturns503BeforeFirstSuccess(t *testing.T) {
	srv, _ := newTestServer(t, sourceFunc(func(context.Context, int) ([]domain.Earthquake, error) {
		return nil, errors.New("down")
	}))
	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/readyz").Code)
}

func TestReadyzReturns200AfterRefresh(t *testing.T) {
	srv, _ := loadedServer(t)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := loadedServer(t)
	rec := serve(srv, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := loadedServer(t)
	rec := serve(srv, http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Status     string              `json:"status"`
		Refreshing bool                `json:"refreshing"`
		Quakes     []domain.Earthquake `json:"quakes"`
	}](t, rec)
	assert.Equal(t, "success", body.Status)
	assert.False(t, body.Refreshing)
	assert.Len(t, body.Quakes, 4)
}

func TestStateEndpoint_Error(t *testing.T) {
	srv, sess := newTestServer(t, sourceFunc(func(context.Context, int) ([]domain.Earthquake, error) {
		return nil, &domain.TransportError{StatusCode: 500, Err: errors.New("internal")}
	}))
	require.Error(t, sess.Refresh(context.Background(), store.RefreshOptions{}))

	body := decode[map[string]string](t, serve(srv, http.MethodGet, "/api/state"))
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "status 500")
}

func TestQuakesEndpoint_DefaultSortByTime(t *testing.T) {
	srv, _ := loadedServer(t)
	rec := serve(srv, http.MethodGet, "/api/quakes")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Count int          `json:"count"`
		Rows  []domain.Row `json:"rows"`
	}](t, rec)
	require.Equal(t, 4, body.Count)
	ids := []string{body.Rows[0].ID, body.Rows[1].ID, body.Rows[2].ID, body.Rows[3].ID}
	assert.Equal(t, []string{"nc4", "ci1", "us2", "ak3"}, ids)

	assert.Equal(t, "M 4.2", body.Rows[1].Magnitude)
	assert.Equal(t, "2024-08-26 18:20", body.Rows[1].Absolute)
	assert.Equal(t, "3h ago", body.Rows[1].Relative)
}

func TestQuakesEndpoint_FilterAndMagnitudeSort(t *testing.T) {
	srv, _ := loadedServer(t)
	rec := serve(srv, http.MethodGet, "/api/quakes?min_mag=3&sort=magnitude")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Rows []domain.Row `json:"rows"`
	}](t, rec)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "us2", body.Rows[0].ID)
	assert.Equal(t, "ci1", body.Rows[1].ID)
}

func TestQuakesEndpoint_BadParams(t *testing.T) {
	srv, _ := loadedServer(t)
	for _, target := range []string{"/api/quakes?min_mag=big", "/api/quakes?sort=depth", "/api/quakes?min_mag=NaN"} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodGet, target).Code)
		})
	}
}

func TestQuakesEndpoint_ConflictWhenNotLoaded(t *testing.T) {
	srv, _ := newTestServer(t, sourceFunc(func(context.Context, int) ([]domain.Earthquake, error) { return nil, nil }))
	rec := serve(srv, http.MethodGet, "/api/quakes")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "loading", decode[map[string]any](t, rec)["status"])
}

func TestQuakeDetailEndpoint(t *testing.T) {
	srv, _ := loadedServer(t)
	rec := serve(srv, http.MethodGet, "/api/quakes/ci1")
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[domain.Detail](t, rec)
	assert.Equal(t, "ci1", detail.ID)
	assert.Equal(t, "33.0930", detail.Latitude)
	assert.Equal(t, "6.7 km", detail.Depth)
	assert.Contains(t, detail.Share, "near ci1")

	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/api/quakes/missing").Code)
}

func TestSelectionEndpoints(t *testing.T) {
	srv, sess := loadedServer(t)

	empty := decode[map[string]any](t, serve(srv, http.MethodGet, "/api/selection"))
	assert.Nil(t, empty["selected"])

	rec := serve(srv, http.MethodPut, "/api/selection/us2")
	require.Equal(t, http.StatusOK, rec.Code)
	selected, ok := sess.Selected()
	require.True(t, ok)
	assert.Equal(t, "us2", selected.ID)

	body := decode[struct {
		Selected *domain.Detail `json:"selected"`
	}](t, serve(srv, http.MethodGet, "/api/selection"))
	require.NotNil(t, body.Selected)
	assert.Equal(t, "us2", body.Selected.ID)

	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodPut, "/api/selection/missing").Code)

	assert.Equal(t, http.StatusNoContent, serve(srv, http.MethodDelete, "/api/selection").Code)
	_, ok = sess.Selected()
	assert.False(t, ok)
}

func TestRefreshEndpoint_ReportsTransition(t *testing.T) {
	release := make(chan struct{})
	srv, sess := newTestServer(t, sourceFunc(func(ctx context.Context, _ int) ([]domain.Earthquake, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return sampleQuakes(), nil
	}))

	rec := serve(srv, http.MethodPost, "/api/refresh?first_load=true&limit=20")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "loading", decode[map[string]any](t, rec)["status"])

	close(release)
	require.Eventually(t, func() bool {
		return sess.State().Phase == store.PhaseSuccess
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshEndpoint_BadParams(t *testing.T) {
	srv, _ := loadedServer(t)
	for _, target := range []string{"/api/refresh?first_load=maybe", "/api/refresh?limit=0", "/api/refresh?limit=20001"} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodPost, target).Code)
		})
	}
}
