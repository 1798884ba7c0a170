package chart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

func testRange(t *testing.T) types.DateRange {
	t.Helper()
	rng, err := types.ParseDateRange("2023-01-10", "2023-01-12")
	require.NoError(t, err)
	return rng
}

func testSeries(key, label, unit string, start time.Time, n int) types.Series {
	s := types.Series{Key: key, Label: label, Unit: unit}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, types.Point{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Value: float64(i%24) - 3.5,
		})
	}
	return s
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"wxgraph.png", FormatPNG},
		{"out/Graph.SVG", FormatSVG},
		{"report.html", FormatHTML},
		{"report.htm", FormatHTML},
		{"print.pdf", FormatPDF},
		{"print.eps", FormatEPS},
		{"photo.jpeg", FormatJPEG},
		{"photo.jpg", FormatJPEG},
		{"scan.tif", FormatTIFF},
		{"-", FormatPNG},
		{"", FormatPNG},
		{"noext", FormatPNG},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	_, err := ParseFormat("bmp")
	var ue *types.UsageError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, ue.Msg, "bmp")
}

func TestFullTitle(t *testing.T) {
	rng := testRange(t)
	otemp := testSeries("otemp", "Outdoor temperature", "°F", rng.Start, 48)
	ohum := testSeries("ohum", "Outdoor humidity", "%", rng.Start, 40)

	c := Chart{Range: rng, Series: []types.Series{otemp, ohum}}
	assert.Equal(t, "Outdoor temperature, Outdoor humidity 2023-01-10 to 2023-01-12 (3 days, 48 points)", c.FullTitle())

	c.Title = "Custom"
	assert.Equal(t, "Custom", c.FullTitle())

	empty := Chart{Range: rng, Series: []types.Series{{Key: "otemp", Label: "Outdoor temperature"}}}
	assert.Equal(t, "Outdoor temperature 2023-01-10 to 2023-01-12 (3 days, 0 points) - no data", empty.FullTitle())
}

func TestAxisAssignment(t *testing.T) {
	series := []types.Series{
		{Unit: "°F"}, {Unit: "%"}, {Unit: "°F"},
	}
	assert.Equal(t, []int{0, 1, 0}, axisAssignment(series))
	assert.Empty(t, axisAssignment(nil))
}

func TestValueRange(t *testing.T) {
	series := []types.Series{
		{Points: []types.Point{{Value: 10}, {Value: 20}}},
		{Points: []types.Point{{Value: 5}}},
	}
	axes := []int{0, 1}

	lo, hi, ok := valueRange(series, axes, 0)
	require.True(t, ok)
	assert.InDelta(t, 9.5, lo, 1e-9)
	assert.InDelta(t, 20.5, hi, 1e-9)

	lo, hi, ok = valueRange(series, axes, 1)
	require.True(t, ok)
	assert.Equal(t, 4.0, lo)
	assert.Equal(t, 6.0, hi)

	_, _, ok = valueRange(series[:1], axes[:1], 1)
	assert.False(t, ok)
}

func TestRender_AllFormats(t *testing.T) {
	rng := testRange(t)
	otemp := testSeries("otemp", "Outdoor temperature", "°F", rng.Start, 72)
	ohum := testSeries("ohum", "Outdoor humidity", "%", rng.Start, 72)

	magic := map[Format][]byte{
		FormatPNG:  []byte("\x89PNG"),
		FormatSVG:  []byte("<svg"),
		FormatHTML: []byte("<html"),
		FormatPDF:  []byte("%PDF"),
		FormatEPS:  []byte("%!PS"),
		FormatJPEG: []byte("\xff\xd8"),
		FormatTIFF: []byte("II"),
	}
	for f, want := range magic {
		t.Run(string(f), func(t *testing.T) {
			c := Chart{Range: rng, Series: []types.Series{otemp, ohum}, Width: 640, Height: 480}
			var buf bytes.Buffer
			require.NoError(t, c.Render(&buf, f))
			assert.True(t, bytes.Contains(buf.Bytes()[:min(buf.Len(), 512)], want), "missing %q header", want)
		})
	}
}

func TestRender_NoData(t *testing.T) {
	rng := testRange(t)
	c := Chart{
		Range:  rng,
		Series: []types.Series{{Key: "otemp", Label: "Outdoor temperature", Unit: "°F"}},
		Width:  640,
		Height: 480,
	}
	for _, f := range []Format{FormatPNG, FormatSVG, FormatHTML, FormatPDF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Render(&buf, f))
			assert.NotZero(t, buf.Len())
		})
	}

	var svg bytes.Buffer
	require.NoError(t, c.Render(&svg, FormatSVG))
	assert.Contains(t, svg.String(), "no data")
}

func TestRender_SinglePoint(t *testing.T) {
	rng := testRange(t)
	c := Chart{
		Range:  rng,
		Series: []types.Series{testSeries("otemp", "Outdoor temperature", "°F", rng.Start, 1)},
		Width:  640,
		Height: 480,
	}
	for _, f := range []Format{FormatPNG, FormatHTML, FormatPDF} {
		var buf bytes.Buffer
		require.NoError(t, c.Render(&buf, f), f)
	}
}

func TestRender_RequiresRange(t *testing.T) {
	var buf bytes.Buffer
	err := Chart{}.Render(&buf, FormatPNG)
	require.Error(t, err)
}
