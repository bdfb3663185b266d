// Command genfeed writes a deterministic synthetic GeoJSON earthquake feed
// shaped like the USGS event service response. The output round-trips
// through the real mapper before it is written so fixtures match pipeline
// behavior. With -serve it also hosts the feed as a local upstream for
// FEED_BASE_URL.
//
// Usage:
//
//	go run ./cmd/genfeed -n 200 -out data/mock/feed.geojson
//	go run ./cmd/genfeed -n 50 -serve :9000
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

var generatedAt = time.Date(2024, time.August, 26, 21, 20, 0, 0, time.UTC)

// region is a rough epicenter area used to place synthetic events.
type region struct {
	name     string
	lat, lon float64
	network  string
}

var regions = []region{
	{name: "Calipatria, CA", lat: 33.12, lon: -115.51, network: "ci"},
	{name: "Anchorage, Alaska", lat: 61.22, lon: -149.90, network: "ak"},
	{name: "The Geysers, CA", lat: 38.79, lon: -122.76, network: "nc"},
	{name: "Volcano, Hawaii", lat: 19.43, lon: -155.23, network: "hv"},
	{name: "Katsuura, Japan", lat: 35.15, lon: 140.32, network: "us"},
	{name: "Ovalle, Chile", lat: -30.60, lon: -71.20, network: "us"},
}

var directions = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 100, "number of features to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	out := flag.String("out", "", "output path for the GeoJSON feed")
	serve := flag.String("serve", "", "serve the feed on this address instead of exiting")
	flag.Parse()

	if *out == "" && *serve == "" {
		flag.Usage()
		return errors.New("missing required flag: -out or -serve")
	}

	// Fixed clock for reproducible metadata.generated.
	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	defer domain.SetClock(nil)

	feed := generate(*n, rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)))
	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}

	result, err := domain.MapFeed(feed)
	if err != nil {
		return fmt.Errorf("generated feed does not map: %w", err)
	}
	log.Printf("generated %d features: %d mapped, %d skipped", len(feed.Features), len(result.Quakes), len(result.Skipped))

	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil { //nolint:gosec // fixture file
			return err
		}
		log.Printf("wrote %s", *out)
	}

	if *serve != "" {
		return serveFeed(*serve, feed)
	}
	return nil
}

// generate builds n features, newest first, the way orderby=time returns them.
// Every tenth feature exercises a nullable field.
func generate(n int, rng *rand.Rand) *domain.FeedResponse {
	now := domain.NowMillis()
	features := make([]domain.FeedFeature, 0, n)
	t := now

	for i := range n {
		t -= int64(30_000 + rng.IntN(20*60_000))
		r := regions[rng.IntN(len(regions))]

		id := fmt.Sprintf("%s%08d", r.network, 40_000_000+i)
		mag := math.Round((rng.ExpFloat64()*0.9+0.5)*10) / 10
		place := fmt.Sprintf("%d km %s of %s", 1+rng.IntN(40), directions[rng.IntN(len(directions))], r.name)
		eventTime := t
		sig := int(math.Min(1000, math.Pow(mag, 2.2)*12))
		magType, status := "ml", "automatic"
		tsunami := 0
		if mag >= 6.5 && r.network == "us" {
			tsunami = 1
		}

		props := &domain.FeedProperties{
			Mag:     &mag,
			Place:   &place,
			Time:    &eventTime,
			Tsunami: &tsunami,
			Sig:     &sig,
			MagType: &magType,
			Status:  &status,
		}
		if alert := alertFor(mag); alert != "" {
			props.Alert = &alert
		}
		if mag >= 2.5 {
			felt := rng.IntN(int(mag * 50))
			cdi := math.Round(mag*8) / 10
			props.Felt = &felt
			props.CDI = &cdi
		}

		coords := []float64{
			round4(r.lon + rng.Float64() - 0.5),
			round4(r.lat + rng.Float64() - 0.5),
			math.Round(rng.Float64()*300) / 10,
		}

		switch i % 10 {
		case 3:
			props.Mag = nil
		case 6:
			props.Place = nil
		case 9:
			coords = coords[:2]
		}

		features = append(features, domain.FeedFeature{
			Type:       "Feature",
			ID:         &id,
			Properties: props,
			Geometry:   &domain.FeedGeometry{Type: "Point", Coordinates: coords},
		})
	}

	count := len(features)
	return &domain.FeedResponse{
		Type: "FeatureCollection",
		Metadata: &domain.FeedMetadata{
			Generated: &now,
			Title:     "USGS Earthquakes (synthetic)",
			Status:    http.StatusOK,
			API:       "1.14.1",
			Count:     count,
		},
		Features: features,
	}
}

func alertFor(mag float64) string {
	switch {
	case mag >= 7:
		return "red"
	case mag >= 6.5:
		return "orange"
	case mag >= 6:
		return "yellow"
	case mag >= 5:
		return "green"
	default:
		return ""
	}
}

func round4(v float64) float64 {
	return math.Round(v*10_000) / 10_000
}

// serveFeed hosts feed at every path, honoring the limit parameter.
func serveFeed(addr string, feed *domain.FeedResponse) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		page := *feed
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(page.Features) {
			page.Features = page.Features[:limit]
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page) //nolint:errcheck // best-effort mock upstream
	})

	log.Printf("serving synthetic feed on %s", addr)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
