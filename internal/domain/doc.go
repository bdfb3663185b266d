// Package domain models USGS earthquake feed data and the display rules
// derived from it.
//
// # Data Source
//
// Events come from the USGS FDSN event web service, queried as GeoJSON at
// https://earthquake.usgs.gov/fdsnws/event/1/query?format=geojson&orderby=time.
// The response is a FeatureCollection; each feature is one seismic event.
//
// # Feed Conventions
//
// Identity:
//
//	"id" is the USGS event ID, network code plus event code, e.g. "ci40654799".
//	It is the list-rendering key. Features without one are skipped.
//
// Time:
//
//	"properties.time" is epoch milliseconds (UTC) of the event origin.
//	Absent values map to 0. Negative values (pre-1970) are skipped so that
//	TimeMillis is always non-negative.
//
// Coordinates:
//
//	"geometry.coordinates" is [longitude, latitude, depth_km], always in that
//	order. Depth is sometimes omitted. Missing trailing elements map to 0.0;
//	extra elements are ignored.
//
// Magnitude:
//
//	"properties.mag" is nullable. Null stays absent on the record (nil
//	pointer) and is only read as 0.0 when computing display buckets or
//	applying a minimum-magnitude filter.
//
// Enrichment:
//
//	alert    PAGER level: green, yellow, orange, red (anything else dropped)
//	tsunami  1 when a tsunami message was issued, else 0
//	cdi      Community Determined Intensity ("Did You Feel It?")
//	mmi      ShakeMap instrumental intensity
//	felt     number of felt reports
//	sig      significance 0–1000
//
// # Display Classification
//
// Two monotonic scales are derived from magnitude, both total over finite
// values:
//
//	Bucket:   <3 low | <5 medium | <7 high | ≥7 extreme
//	Severity: <3 Minor | <4 Light | <5 Moderate | <6 Strong | <7 Major | ≥7 Great
//
// Relative time uses the thresholds <5s "just now", then seconds, minutes,
// hours and days (floored), suffixed "ago" or "from now".
package domain
