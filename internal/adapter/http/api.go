package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/store"
)

// maxLimit mirrors the upstream page size cap.
const maxLimit = 20000

// refreshAckTimeout bounds how long POST /api/refresh waits for the refresh
// to publish its first transition.
const refreshAckTimeout = 2 * time.Second

// Session is the presentation boundary the API serves.
type Session interface {
	CheckReadiness(ctx context.Context) error
	State() store.UiState
	OnStateChange(fn func(store.UiState)) func()
	Refresh(ctx context.Context, opts store.RefreshOptions) error
	Quake(id string) (domain.Earthquake, bool)
	Select(q domain.Earthquake)
	Clear()
	Selected() (domain.Earthquake, bool)
}

type quakesResponse struct {
	Count      int          `json:"count"`
	Refreshing bool         `json:"refreshing"`
	Rows       []domain.Row `json:"rows"`
}

type selectionResponse struct {
	Selected *domain.Detail `json:"selected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State())
}

// handleRefresh starts a refresh in the background and answers with the
// state it moved to.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	opts, err := parseRefreshOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	began := make(chan store.UiState, 1)
	replayed := false
	unsubscribe := s.session.OnStateChange(func(st store.UiState) {
		if !replayed {
			replayed = true
			return
		}
		select {
		case began <- st:
		default:
		}
	})
	defer unsubscribe()

	ctx := context.WithoutCancel(r.Context())
	go func() {
		err := s.session.Refresh(ctx, opts)
		if err != nil && !errors.Is(err, store.ErrSuperseded) {
			s.logger.Debug("requested refresh failed", "error", err)
		}
	}()

	state := s.session.State()
	select {
	case state = <-began:
	case <-time.After(refreshAckTimeout):
	case <-r.Context().Done():
		return
	}
	writeJSON(w, http.StatusAccepted, state)
}

func (s *Server) handleQuakes(w http.ResponseWriter, r *http.Request) {
	opts, err := parseDisplayOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	state := s.session.State()
	if state.Phase != store.PhaseSuccess {
		writeJSON(w, http.StatusConflict, state)
		return
	}

	list := domain.Derive(state.Quakes, opts)
	writeJSON(w, http.StatusOK, quakesResponse{
		Count:      len(list),
		Refreshing: state.Refreshing,
		Rows:       domain.BuildRows(list, domain.NowMillis(), s.location),
	})
}

func (s *Server) handleQuake(w http.ResponseWriter, r *http.Request) {
	q, ok := s.session.Quake(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "earthquake not found"})
		return
	}
	writeJSON(w, http.StatusOK, domain.BuildDetail(q, domain.NowMillis(), s.location))
}

func (s *Server) handleSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	q, ok := s.session.Quake(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "earthquake not found"})
		return
	}
	s.session.Select(q)
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selection() selectionResponse {
	q, ok := s.session.Selected()
	if !ok {
		return selectionResponse{}
	}
	detail := domain.BuildDetail(q, domain.NowMillis(), s.location)
	return selectionResponse{Selected: &detail}
}

func parseRefreshOptions(r *http.Request) (store.RefreshOptions, error) {
	var opts store.RefreshOptions
	q := r.URL.Query()

	if v := q.Get("first_load"); v != "" {
		firstLoad, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid first_load: must be a boolean")
		}
		opts.FirstLoad = firstLoad
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxLimit {
			return opts, errors.New("invalid limit: must be between 1 and 20000")
		}
		opts.Limit = limit
	}
	return opts, nil
}

func parseDisplayOptions(r *http.Request) (domain.DisplayOptions, error) {
	var opts domain.DisplayOptions
	q := r.URL.Query()

	if v := q.Get("min_mag"); v != "" {
		minMag, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(minMag) || math.IsInf(minMag, 0) {
			return opts, errors.New("invalid min_mag: must be a number")
		}
		opts.MinMagnitude = &minMag
	}
	sortKey, err := domain.ParseSortKey(q.Get("sort"))
	if err != nil {
		return opts, err
	}
	opts.SortBy = sortKey
	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
