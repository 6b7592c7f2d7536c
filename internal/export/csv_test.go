package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Katakuri004/HT-Project-Scripts/pkg/cycle"
)

func testTrace(t *testing.T) *cycle.Trace {
	t.Helper()

	trace, err := cycle.Run(73, cycle.DefaultParameters())
	require.NoError(t, err)
	return trace
}

func TestWriteTrace(t *testing.T) {
	trace := testTrace(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, trace, 3000))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 74) // header + 73 samples
	assert.Equal(t, []string{
		"Time (seconds)",
		"Crank Angle (degrees)",
		"Temperature (°C)",
		"Pressure (bar)",
		"Stroke",
	}, records[0])

	first := records[1]
	assert.Equal(t, "0.0000", first[0])
	assert.Equal(t, "0.0", first[1])
	assert.Equal(t, "Intake", first[4])

	last := records[73]
	// one cycle at 3000 RPM takes 0.04 s
	assert.Equal(t, "0.0400", last[0])
	assert.Equal(t, "720.0", last[1])
	assert.Equal(t, "Exhaust", last[4])
}

func TestWriteSummary(t *testing.T) {
	trace := testTrace(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, trace, 3000))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 11)

	metrics := make(map[string]string)
	for _, row := range records[1:] {
		metrics[row[0]] = row[1]
	}

	assert.Equal(t, "3000 RPM", metrics["Engine Speed"])
	assert.Equal(t, "0.0400 seconds", metrics["Cycle Duration"])
	assert.Equal(t, "73 points", metrics["Number of Sample Points"])
	assert.Equal(t, "10.0 degrees", metrics["Sampling Interval"])
	assert.Contains(t, metrics["Peak Temperature"], "°C")
	assert.Contains(t, metrics["Peak Pressure"], "bar")
}

func TestWriteStrokeSummary(t *testing.T) {
	trace := testTrace(t)

	var buf bytes.Buffer
	require.NoError(t, WriteStrokeSummary(&buf, trace))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header + four strokes

	assert.Equal(t, "Intake", records[1][0])
	assert.Equal(t, "Compression", records[2][0])
	assert.Equal(t, "Power", records[3][0])
	assert.Equal(t, "Exhaust", records[4][0])

	// power stroke carries the combustion peak, so its max dominates
	powerMax := records[3][3]
	intakeMax := records[1][3]
	assert.Greater(t, mustFloat(t, powerMax), mustFloat(t, intakeMax))
}

func TestFiles(t *testing.T) {
	trace := testTrace(t)
	dir := t.TempDir()

	paths, err := Files(dir, "bench run: hot", trace, 3000)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, path := range paths {
		name := filepath.Base(path)
		assert.False(t, strings.ContainsAny(name, " :"), "filename not sanitized: %s", name)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.True(t, strings.HasSuffix(paths[0], "bench_run__hot_trace.csv"))
	assert.True(t, strings.HasSuffix(paths[1], "bench_run__hot_summary.csv"))
	assert.True(t, strings.HasSuffix(paths[2], "bench_run__hot_strokes.csv"))
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()

	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}
