package store

import (
	"encoding/json"
	"slices"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
)

// Phase discriminates the active UiState variant.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// UiState is the presentation state. Quakes and Refreshing are only
// meaningful in PhaseSuccess, Message only in PhaseError.
type UiState struct {
	Phase      Phase
	Quakes     []domain.Earthquake
	Refreshing bool
	Message    string
}

// Loading is the full-screen loading state.
func Loading() UiState {
	return UiState{Phase: PhaseLoading}
}

// Success holds a copy of quakes. refreshing marks a background fetch in progress.
func Success(quakes []domain.Earthquake, refreshing bool) UiState {
	list := slices.Clone(quakes)
	if list == nil {
		list = []domain.Earthquake{}
	}
	return UiState{Phase: PhaseSuccess, Quakes: list, Refreshing: refreshing}
}

// Failed is the error state shown when no data has been loaded yet.
func Failed(message string) UiState {
	if message == "" {
		message = "Unknown error"
	}
	return UiState{Phase: PhaseError, Message: message}
}

func (s UiState) clone() UiState {
	if s.Phase == PhaseSuccess {
		s.Quakes = slices.Clone(s.Quakes)
	}
	return s
}

// MarshalJSON encodes only the fields of the active variant.
func (s UiState) MarshalJSON() ([]byte, error) {
	switch s.Phase {
	case PhaseSuccess:
		quakes := s.Quakes
		if quakes == nil {
			quakes = []domain.Earthquake{}
		}
		return json.Marshal(struct {
			Status     Phase               `json:"status"`
			Quakes     []domain.Earthquake `json:"quakes"`
			Refreshing bool                `json:"refreshing"`
		}{s.Phase, quakes, s.Refreshing})
	case PhaseError:
		return json.Marshal(struct {
			Status  Phase  `json:"status"`
			Message string `json:"message"`
		}{s.Phase, s.Message})
	default:
		return json.Marshal(struct {
			Status Phase `json:"status"`
		}{PhaseLoading})
	}
}
