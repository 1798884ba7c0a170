package chart

import (
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func renderGoChart(w io.Writer, c Chart, f Format) error {
	width, height := c.size()
	axes := axisAssignment(c.Series)

	graph := gochart.Chart{
		Title:      c.FullTitle(),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat(dateFormat(c.Range)),
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(c.Range.Start),
				Max: gochart.TimeToFloat64(c.Range.EndExclusive()),
			},
		},
	}
	lo, hi, _ := valueRange(c.Series, axes, 0)
	graph.YAxis = gochart.YAxis{
		Name:  axisName(c.Series, axes, 0),
		Range: &gochart.ContinuousRange{Min: lo, Max: hi},
	}
	if lo2, hi2, ok := valueRange(c.Series, axes, 1); ok {
		graph.YAxisSecondary = gochart.YAxis{
			Name:  axisName(c.Series, axes, 1),
			Range: &gochart.ContinuousRange{Min: lo2, Max: hi2},
		}
	}

	for i, s := range c.Series {
		// go-chart rejects series without values.
		if s.Empty() {
			continue
		}
		ts := gochart.TimeSeries{
			Name: s.Label,
			Style: gochart.Style{
				StrokeColor: gochart.GetDefaultColor(i),
				StrokeWidth: 1.5,
			},
			XValues: make([]time.Time, len(s.Points)),
			YValues: make([]float64, len(s.Points)),
		}
		if len(s.Points) == 1 {
			ts.Style.DotWidth = 3
			ts.Style.DotColor = gochart.GetDefaultColor(i)
		}
		if axes[i] == 1 {
			ts.YAxis = gochart.YAxisSecondary
		}
		for j, p := range s.Points {
			ts.XValues[j] = p.Time
			ts.YValues[j] = p.Value
		}
		graph.Series = append(graph.Series, ts)
	}

	if len(graph.Series) == 0 {
		// Nothing to plot: an invisible line across the window keeps the
		// axes and the no-data title.
		graph.Series = []gochart.Series{gochart.TimeSeries{
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
			XValues: []time.Time{c.Range.Start, c.Range.EndExclusive()},
			YValues: []float64{lo, lo},
		}}
	} else {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	rp := gochart.PNG
	if f == FormatSVG {
		rp = gochart.SVG
	}
	return graph.Render(rp, w)
}
