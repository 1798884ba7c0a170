// Package chart renders selected series. Raster and SVG output goes through
// go-chart, interactive HTML through go-echarts, and print formats through
// gonum/plot.
package chart

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatEPS  Format = "eps"
	FormatJPEG Format = "jpg"
	FormatTIFF Format = "tiff"
)

// Default canvas is the 19x9 inch figure of the original plots at 96 dpi.
const (
	DefaultWidth  = 1824
	DefaultHeight = 864
	dpi           = 96
)

const noDataSuffix = " - no data"

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "eps":
		return FormatEPS, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", &types.UsageError{Msg: fmt.Sprintf("unsupported chart format %q (allowed: png, svg, html, pdf, eps, jpg, tiff)", s)}
	}
}

// FormatFromPath picks the format from the file extension. Standard output
// ("-") and extensionless paths get PNG.
func FormatFromPath(path string) (Format, error) {
	if path == "" || path == "-" {
		return FormatPNG, nil
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatPNG, nil
	}
	return ParseFormat(ext)
}

// Chart is what the emitter needs: the requested window, the series, and
// optionally a title and pixel size.
type Chart struct {
	Title  string
	Range  types.DateRange
	Series []types.Series
	Width  int
	Height int
}

// HasData reports whether any series has at least one point.
func (c Chart) HasData() bool {
	for _, s := range c.Series {
		if !s.Empty() {
			return true
		}
	}
	return false
}

// Render writes the chart in format f. An empty selection still renders,
// titled as having no data.
func (c Chart) Render(w io.Writer, f Format) error {
	if c.Range.IsZero() {
		return fmt.Errorf("chart: date range is required")
	}
	switch f {
	case FormatPNG, FormatSVG:
		return renderGoChart(w, c, f)
	case FormatHTML:
		return renderECharts(w, c)
	case FormatPDF, FormatEPS, FormatJPEG, FormatTIFF:
		return renderGonum(w, c, f)
	default:
		return fmt.Errorf("chart: unsupported format %q", f)
	}
}

// FullTitle is the title drawn on the chart: "<labels> <start> to <end>
// (<days> days, <points> points)", with a no-data marker when empty.
func (c Chart) FullTitle() string {
	title := c.Title
	if title == "" {
		labels := make([]string, 0, len(c.Series))
		for _, s := range c.Series {
			labels = append(labels, s.Label)
		}
		title = fmt.Sprintf("%s %s", strings.Join(labels, ", "), rangeSummary(c.Range, c.Series...))
	}
	if !c.HasData() {
		title += noDataSuffix
	}
	return title
}

func rangeSummary(rng types.DateRange, series ...types.Series) string {
	points := 0
	for _, s := range series {
		if s.Len() > points {
			points = s.Len()
		}
	}
	return fmt.Sprintf("%s (%d days, %d points)", rng, rng.Days(), points)
}

func (c Chart) size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// dateFormat labels ticks with the date, adding the time for short ranges.
func dateFormat(rng types.DateRange) string {
	if rng.Days() <= 2 {
		return "01-02 15:04"
	}
	return "01-02-2006"
}

// axisAssignment maps each series to the primary (0) or secondary (1) y axis:
// the first unit seen is primary, a different second unit goes secondary.
func axisAssignment(series []types.Series) []int {
	out := make([]int, len(series))
	if len(series) == 0 {
		return out
	}
	primary := series[0].Unit
	for i, s := range series {
		if s.Unit != primary {
			out[i] = 1
		}
	}
	return out
}

// valueRange is the padded y extent of the series on one axis. Constant data
// is widened so the axis never collapses.
func valueRange(series []types.Series, axes []int, axis int) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range series {
		if axes[i] != axis {
			continue
		}
		for _, p := range s.Points {
			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1, false
	}
	if lo == hi {
		return lo - 1, hi + 1, true
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad, true
}

func axisName(series []types.Series, axes []int, axis int) string {
	var labels []string
	unit := ""
	for i, s := range series {
		if axes[i] != axis {
			continue
		}
		labels = append(labels, s.Label)
		unit = s.Unit
	}
	name := strings.Join(labels, ", ")
	if unit != "" {
		name += " (" + unit + ")"
	}
	return name
}
