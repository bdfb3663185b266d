package domain

import (
	"encoding/json"
	"math"
	"strings"
)

// UnknownPlace is the title used when the feed omits a place name.
const UnknownPlace = "Unknown place"

// SkippedFeature records a feature that MapFeed dropped and why.
type SkippedFeature struct {
	Index  int
	ID     string
	Reason string
}

// MapResult is the outcome of mapping one feed payload.
type MapResult struct {
	Quakes  []Earthquake
	Skipped []SkippedFeature
}

// DecodeFeed parses a GeoJSON feed body.
func DecodeFeed(data []byte) (*FeedResponse, error) {
	var resp FeedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &resp, nil
}

// MapFeed converts a feed payload into Earthquake records, preserving the
// upstream feature order. Features without an ID or with a negative time are
// skipped; a missing features array or properties object fails the payload.
func MapFeed(resp *FeedResponse) (MapResult, error) {
	if resp == nil || resp.Features == nil {
		return MapResult{}, &MappingError{Index: -1, Reason: "missing features array"}
	}

	result := MapResult{Quakes: make([]Earthquake, 0, len(resp.Features))}
	for i, f := range resp.Features {
		if f.Properties == nil {
			return MapResult{}, &MappingError{Index: i, Reason: "missing properties object"}
		}

		id := ""
		if f.ID != nil {
			id = strings.TrimSpace(*f.ID)
		}
		if id == "" {
			result.Skipped = append(result.Skipped, SkippedFeature{Index: i, Reason: "missing id"})
			continue
		}

		quake, reason := mapFeature(id, f)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedFeature{Index: i, ID: id, Reason: reason})
			continue
		}
		result.Quakes = append(result.Quakes, quake)
	}
	return result, nil
}

// mapFeature builds one record. A non-empty reason means the feature is dropped.
func mapFeature(id string, f FeedFeature) (Earthquake, string) {
	p := f.Properties

	var timeMillis int64
	if p.Time != nil {
		if *p.Time < 0 {
			return Earthquake{}, "negative time"
		}
		timeMillis = *p.Time
	}

	var mag *float64
	if p.Mag != nil && !math.IsNaN(*p.Mag) && !math.IsInf(*p.Mag, 0) {
		m := *p.Mag
		mag = &m
	}

	title := UnknownPlace
	if p.Place != nil && strings.TrimSpace(*p.Place) != "" {
		title = *p.Place
	}

	var coords []float64
	if f.Geometry != nil {
		coords = f.Geometry.Coordinates
	}

	return Earthquake{
		ID:         id,
		Magnitude:  mag,
		Title:      title,
		TimeMillis: timeMillis,
		Lon:        coordinateAt(coords, 0),
		Lat:        coordinateAt(coords, 1),
		DepthKm:    coordinateAt(coords, 2),

		Alert:        normalizeAlert(p.Alert),
		Tsunami:      p.Tsunami != nil && *p.Tsunami == 1,
		CDI:          copyFloat(p.CDI),
		MMI:          copyFloat(p.MMI),
		Felt:         copyInt(p.Felt),
		Significance: copyInt(p.Sig),
	}, ""
}

// coordinateAt returns coords[i], or 0 when the element is absent.
func coordinateAt(coords []float64, i int) float64 {
	if i < len(coords) {
		return coords[i]
	}
	return 0
}

// normalizeAlert lower-cases the PAGER level and drops values outside the known set.
func normalizeAlert(value *string) *Alert {
	if value == nil {
		return nil
	}
	a := Alert(strings.ToLower(strings.TrimSpace(*value)))
	switch a {
	case AlertGreen, AlertYellow, AlertOrange, AlertRed:
		return &a
	default:
		return nil
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
