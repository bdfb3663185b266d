package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// SortKey selects the display ordering of a quake list.
type SortKey string

const (
	SortByTime      SortKey = "time"
	SortByMagnitude SortKey = "magnitude"
)

// ParseSortKey accepts "time" or "magnitude"; empty means time.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByTime:
		return SortByTime, nil
	case SortByMagnitude:
		return SortByMagnitude, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// FilterPresets are the minimum-magnitude choices offered to users. Nil is "All".
var FilterPresets = []*float64{nil, ptr(3.0), ptr(4.0), ptr(5.0)}

// DisplayOptions are the user-chosen list controls.
type DisplayOptions struct {
	MinMagnitude *float64 // nil keeps all
	SortBy       SortKey
}

// Derive applies the minimum-magnitude filter and then the sort order.
func Derive(list []Earthquake, opts DisplayOptions) []Earthquake {
	return Sort(FilterByMinMagnitude(list, opts.MinMagnitude), opts.SortBy)
}

// FilterByMinMagnitude keeps items whose magnitude (absent read as 0.0) is at
// least threshold. A nil threshold keeps every item. Order is preserved and
// the input is never modified.
func FilterByMinMagnitude(list []Earthquake, threshold *float64) []Earthquake {
	if threshold == nil {
		return slices.Clone(list)
	}
	out := make([]Earthquake, 0, len(list))
	for _, q := range list {
		if q.MagnitudeOrZero() >= *threshold {
			out = append(out, q)
		}
	}
	return out
}

// Sort returns a stably sorted copy of list. SortByTime puts the most recent
// first; SortByMagnitude puts the largest first with absent magnitudes last.
// Unknown keys fall back to time.
func Sort(list []Earthquake, key SortKey) []Earthquake {
	out := slices.Clone(list)
	switch key {
	case SortByMagnitude:
		slices.SortStableFunc(out, func(a, b Earthquake) int {
			return cmp.Compare(sortableMagnitude(b), sortableMagnitude(a))
		})
	default:
		slices.SortStableFunc(out, func(a, b Earthquake) int {
			return cmp.Compare(b.TimeMillis, a.TimeMillis)
		})
	}
	return out
}

// sortableMagnitude reads an absent magnitude as negative infinity.
func sortableMagnitude(q Earthquake) float64 {
	if q.Magnitude == nil {
		return math.Inf(-1)
	}
	return *q.Magnitude
}

// Bucket is the color band used for magnitude chips.
type Bucket string

const (
	BucketLow     Bucket = "low"
	BucketMedium  Bucket = "medium"
	BucketHigh    Bucket = "high"
	BucketExtreme Bucket = "extreme"
)

// MagnitudeBucket maps a magnitude to its chip band: <3 low, <5 medium,
// <7 high, else extreme. Absent and NaN read as 0.0.
func MagnitudeBucket(mag *float64) Bucket {
	m := displayMagnitude(mag)
	switch {
	case m < 3:
		return BucketLow
	case m < 5:
		return BucketMedium
	case m < 7:
		return BucketHigh
	default:
		return BucketExtreme
	}
}

// Severity is the user-facing intensity label.
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityLight    Severity = "Light"
	SeverityModerate Severity = "Moderate"
	SeverityStrong   Severity = "Strong"
	SeverityMajor    Severity = "Major"
	SeverityGreat    Severity = "Great"
)

// SeverityOf maps a magnitude to its label:
//   - <3 Minor, <4 Light, <5 Moderate, <6 Strong, <7 Major, else Great
func SeverityOf(mag *float64) Severity {
	m := displayMagnitude(mag)
	switch {
	case m < 3:
		return SeverityMinor
	case m < 4:
		return SeverityLight
	case m < 5:
		return SeverityModerate
	case m < 6:
		return SeverityStrong
	case m < 7:
		return SeverityMajor
	default:
		return SeverityGreat
	}
}

func displayMagnitude(mag *float64) float64 {
	if mag == nil || math.IsNaN(*mag) {
		return 0
	}
	return *mag
}

// FormatMagnitude renders "M 4.2"; absent magnitudes render as "M 0.0".
func FormatMagnitude(mag *float64) string {
	return fmt.Sprintf("M %.1f", displayMagnitude(mag))
}

// AlertLabel renders "Alert: Orange", or "" when there is no alert.
func AlertLabel(a *Alert) string {
	if a == nil || *a == "" {
		return ""
	}
	s := string(*a)
	return "Alert: " + strings.ToUpper(s[:1]) + s[1:]
}

// IntensityLabel prefers instrumental intensity over community intensity.
func IntensityLabel(q Earthquake) string {
	switch {
	case q.MMI != nil:
		return fmt.Sprintf("MMI %.1f", *q.MMI)
	case q.CDI != nil:
		return fmt.Sprintf("CDI %.1f", *q.CDI)
	default:
		return ""
	}
}

// Row is one formatted list entry.
type Row struct {
	ID        string   `json:"id"`
	Magnitude string   `json:"magnitude"`
	Bucket    Bucket   `json:"bucket"`
	Severity  Severity `json:"severity"`
	Title     string   `json:"title"`
	Absolute  string   `json:"absolute_time"`
	Relative  string   `json:"relative_time"`
}

// BuildRow formats q for list display.
func BuildRow(q Earthquake, nowMillis int64, loc *time.Location) Row {
	return Row{
		ID:        q.ID,
		Magnitude: FormatMagnitude(q.Magnitude),
		Bucket:    MagnitudeBucket(q.Magnitude),
		Severity:  SeverityOf(q.Magnitude),
		Title:     q.Title,
		Absolute:  FormatAbsoluteTimeIn(q.TimeMillis, loc),
		Relative:  FormatRelativeTime(q.TimeMillis, nowMillis),
	}
}

// BuildRows formats every item of list, keeping its order.
func BuildRows(list []Earthquake, nowMillis int64, loc *time.Location) []Row {
	rows := make([]Row, len(list))
	for i, q := range list {
		rows[i] = BuildRow(q, nowMillis, loc)
	}
	return rows
}

// Detail is the formatted single-event view.
type Detail struct {
	Row
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Depth        string `json:"depth"`
	Alert        string `json:"alert,omitempty"`
	Intensity    string `json:"intensity,omitempty"`
	Tsunami      bool   `json:"tsunami"`
	Felt         *int   `json:"felt,omitempty"`
	Significance *int   `json:"significance,omitempty"`
	Share        string `json:"share_text"`
}

// BuildDetail formats q for the detail view.
func BuildDetail(q Earthquake, nowMillis int64, loc *time.Location) Detail {
	return Detail{
		Row:          BuildRow(q, nowMillis, loc),
		Latitude:     fmt.Sprintf("%.4f", q.Lat),
		Longitude:    fmt.Sprintf("%.4f", q.Lon),
		Depth:        fmt.Sprintf("%.1f km", q.DepthKm),
		Alert:        AlertLabel(q.Alert),
		Intensity:    IntensityLabel(q),
		Tsunami:      q.Tsunami,
		Felt:         q.Felt,
		Significance: q.Significance,
		Share:        ShareText(q, nowMillis, loc),
	}
}

// ShareText is the plain-text summary offered when sharing an event.
func ShareText(q Earthquake, nowMillis int64, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Earthquake %.1f • %s\n", displayMagnitude(q.Magnitude), q.Title)
	fmt.Fprintf(&b, "Time: %s (%s)\n", FormatAbsoluteTimeIn(q.TimeMillis, loc), FormatRelativeTime(q.TimeMillis, nowMillis))
	fmt.Fprintf(&b, "Lat/Lon: %.4f, %.4f • Depth: %.1f km", q.Lat, q.Lon, q.DepthKm)
	if q.Tsunami {
		b.WriteString("\nTsunami: Possible")
	}
	if label := AlertLabel(q.Alert); label != "" {
		b.WriteString("\n" + label)
	}
	switch {
	case q.MMI != nil:
		fmt.Fprintf(&b, "\nMMI: %.1f", *q.MMI)
	case q.CDI != nil:
		fmt.Fprintf(&b, "\nCDI: %.1f", *q.CDI)
	}
	return b.String()
}

func ptr[T any](v T) *T { return &v }
