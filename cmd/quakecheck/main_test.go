package main

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/quakewatch-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOptions() options {
	return options{
		file:   filepath.Join("..", "..", "internal", "pipeline", "testdata", "feed_sample.geojson"),
		minMag: math.NaN(),
		sortBy: "time",
		tz:     "UTC",
	}
}

func TestRun_Count(t *testing.T) {
	opts := sampleOptions()
	opts.count = true

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Equal(t, "6\n", out.String())
}

func TestRun_RowsFilteredAndSorted(t *testing.T) {
	opts := sampleOptions()
	opts.minMag = 3
	opts.sortBy = "magnitude"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "MAG")
	assert.Contains(t, lines[1], "us7000n7xy")
	assert.Contains(t, lines[2], "ci40789047")
	assert.Contains(t, out.String(), "2 shown, 4 mapped, 2 skipped")
}

func TestRun_ValidateReportsSkips(t *testing.T) {
	opts := sampleOptions()
	opts.validate = true

	var out bytes.Buffer
	err := run(context.Background(), opts, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "All features mapped")
	assert.Contains(t, out.String(), "missing id")
	assert.Contains(t, out.String(), "negative time")
}

func TestRun_BadSort(t *testing.T) {
	opts := sampleOptions()
	opts.sortBy = "depth"
	require.Error(t, run(context.Background(), opts, &bytes.Buffer{}))
}

func TestCheckRecords(t *testing.T) {
	nan := math.NaN()
	p := checkRecords([]domain.Earthquake{
		{ID: "a", Title: "x"},
		{ID: "a", Title: "y"},
		{ID: "b", Title: "", Magnitude: &nan},
	})
	assert.False(t, p.passed())
	assert.Len(t, p.errors, 3)
}
