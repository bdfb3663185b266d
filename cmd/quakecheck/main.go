// Command quakecheck fetches the earthquake feed once (or reads a saved feed
// file), runs it through the mapper, checks the mapped records, and prints
// the derived display rows.
//
// Usage:
//
//	go run ./cmd/quakecheck -limit 50 -min-mag 3 -sort magnitude
//	go run ./cmd/quakecheck -file internal/pipeline/testdata/feed_sample.geojson
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/quakewatch-service/internal/adapter/usgs"
	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/couchcryptid/quakewatch-service/internal/observability"
)

type options struct {
	baseURL  string
	path     string
	file     string
	limit    int
	minMag   float64
	sortBy   string
	tz       string
	timeout  time.Duration
	count    bool
	validate bool
}

// phase tracks pass/fail for one check over the mapped feed.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "base-url", "https://earthquake.usgs.gov/", "feed base URL")
	flag.StringVar(&opts.path, "path", "fdsnws/event/1/query", "feed path appended to the base URL")
	flag.StringVar(&opts.file, "file", "", "read a saved GeoJSON feed instead of fetching")
	flag.IntVar(&opts.limit, "limit", 100, "number of events to request")
	flag.Float64Var(&opts.minMag, "min-mag", math.NaN(), "minimum magnitude to display (default all)")
	flag.StringVar(&opts.sortBy, "sort", "time", "sort order: time or magnitude")
	flag.StringVar(&opts.tz, "tz", "Local", "IANA time zone for absolute times")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "feed request timeout")
	flag.BoolVar(&opts.count, "count", false, "print only the number of features in the feed")
	flag.BoolVar(&opts.validate, "validate", false, "run record checks and exit non-zero on failure")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "quakecheck: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	sortKey, err := domain.ParseSortKey(opts.sortBy)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(opts.tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}

	resp, err := loadFeed(ctx, opts)
	if err != nil {
		return err
	}
	if opts.count {
		fmt.Fprintln(out, len(resp.Features))
		return nil
	}

	result, err := domain.MapFeed(resp)
	if err != nil {
		return err
	}

	if opts.validate {
		return report(out, len(resp.Features), result, []*phase{
			checkSkipped(result),
			checkRecords(result.Quakes),
		})
	}

	display := domain.DisplayOptions{SortBy: sortKey}
	if !math.IsNaN(opts.minMag) {
		display.MinMagnitude = &opts.minMag
	}
	rows := domain.BuildRows(domain.Derive(result.Quakes, display), domain.NowMillis(), loc)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MAG\tSEVERITY\tWHEN\tTIME\tPLACE\tID")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Magnitude, r.Severity, r.Relative, r.Absolute, r.Title, r.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d shown, %d mapped, %d skipped\n", len(rows), len(result.Quakes), len(result.Skipped))
	return nil
}

func loadFeed(ctx context.Context, opts options) (*domain.FeedResponse, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, err
		}
		return domain.DecodeFeed(data)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := usgs.NewClient(opts.baseURL, opts.path, opts.timeout, 0, observability.NewMetricsForTesting(), logger)
	return client.Fetch(ctx, domain.FeedQuery{Limit: opts.limit})
}

// checkSkipped fails for every feature the mapper dropped.
func checkSkipped(result domain.MapResult) *phase {
	p := &phase{name: "All features mapped"}
	for _, s := range result.Skipped {
		p.errorf("feature %d (id %q): %s", s.Index, s.ID, s.Reason)
	}
	return p
}

// checkRecords verifies the invariants every mapped record must hold.
func checkRecords(quakes []domain.Earthquake) *phase {
	p := &phase{name: "Record invariants"}
	seen := make(map[string]int, len(quakes))
	for i, q := range quakes {
		if strings.TrimSpace(q.ID) == "" {
			p.errorf("record %d: empty id", i)
		}
		if prev, ok := seen[q.ID]; ok {
			p.errorf("record %d: duplicate id %q (first at %d)", i, q.ID, prev)
		}
		seen[q.ID] = i
		if q.TimeMillis < 0 {
			p.errorf("record %d (%s): negative time %d", i, q.ID, q.TimeMillis)
		}
		if q.Magnitude != nil && (math.IsNaN(*q.Magnitude) || math.IsInf(*q.Magnitude, 0)) {
			p.errorf("record %d (%s): non-finite magnitude", i, q.ID)
		}
		if q.Title == "" {
			p.errorf("record %d (%s): empty title", i, q.ID)
		}
	}
	return p
}

func report(out io.Writer, features int, result domain.MapResult, phases []*phase) error {
	fmt.Fprintln(out, "=== Feed Validation ===")
	fmt.Fprintln(out)

	failed := 0
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			failed++
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Features: %d in feed, %d mapped, %d skipped\n", features, len(result.Quakes), len(result.Skipped))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if failed > 0 {
		return fmt.Errorf("validation failed: %d of %d checks", failed, len(phases))
	}
	fmt.Fprintln(out, "\nAll validations passed.")
	return nil
}
