package domain

import "time"

// FeedResponse is the GeoJSON FeatureCollection returned by the USGS feed.
// Nullable upstream fields are pointers so absence is distinguishable from zero.
type FeedResponse struct {
	Type     string        `json:"type"`
	Metadata *FeedMetadata `json:"metadata"`
	Features []FeedFeature `json:"features"`
}

// FeedMetadata describes the query that produced a FeedResponse.
type FeedMetadata struct {
	Generated *int64 `json:"generated"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	API       string `json:"api"`
	Count     int    `json:"count"`
}

// FeedFeature is one seismic event as delivered upstream.
type FeedFeature struct {
	Type       string          `json:"type"`
	ID         *string         `json:"id"`
	Properties *FeedProperties `json:"properties"`
	Geometry   *FeedGeometry   `json:"geometry"`
}

// FeedProperties holds the event attributes of a feature.
type FeedProperties struct {
	Mag     *float64 `json:"mag"`
	Place   *string  `json:"place"`
	Time    *int64   `json:"time"`
	Updated *int64   `json:"updated"`
	URL     *string  `json:"url"`
	Alert   *string  `json:"alert"`
	Tsunami *int     `json:"tsunami"`
	CDI     *float64 `json:"cdi"`
	MMI     *float64 `json:"mmi"`
	Felt    *int     `json:"felt"`
	Sig     *int     `json:"sig"`
	MagType *string  `json:"magType"`
	Status  *string  `json:"status"`
}

// FeedGeometry is a GeoJSON Point: [lon, lat, depth].
type FeedGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Alert is a USGS PAGER alert level.
type Alert string

const (
	AlertGreen  Alert = "green"
	AlertYellow Alert = "yellow"
	AlertOrange Alert = "orange"
	AlertRed    Alert = "red"
)

// Earthquake is the normalized, immutable domain record for one event.
// Records are only built by MapFeed and are replaced wholesale on refresh.
type Earthquake struct {
	ID         string   `json:"id"`
	Magnitude  *float64 `json:"magnitude"`
	Title      string   `json:"title"`
	TimeMillis int64    `json:"time_millis"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	DepthKm    float64  `json:"depth_km"`

	// Optional enrichment fields.
	Alert        *Alert   `json:"alert,omitempty"`
	Tsunami      bool     `json:"tsunami"`
	CDI          *float64 `json:"cdi,omitempty"`
	MMI          *float64 `json:"mmi,omitempty"`
	Felt         *int     `json:"felt,omitempty"`
	Significance *int     `json:"significance,omitempty"`
}

// MagnitudeOrZero returns the magnitude, reading an absent value as 0.0.
func (e Earthquake) MagnitudeOrZero() float64 {
	if e.Magnitude == nil {
		return 0
	}
	return *e.Magnitude
}

// FeedQuery narrows a feed request. Zero values leave the parameter unset.
type FeedQuery struct {
	Limit        int
	StartTime    time.Time
	EndTime      time.Time
	MinMagnitude *float64
}
