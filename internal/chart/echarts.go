package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func renderECharts(w io.Writer, c Chart) error {
	width, height := c.size()
	axes := axisAssignment(c.Series)
	title := c.FullTitle()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%dpx", width),
			Height:    fmt.Sprintf("%dpx", height),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(c.HasData()), Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Date",
			Type: "time",
			Min:  c.Range.Start.UnixMilli(),
			Max:  c.Range.EndExclusive().UnixMilli(),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  axisName(c.Series, axes, 0),
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	if _, _, ok := valueRange(c.Series, axes, 1); ok {
		line.ExtendYAxis(opts.YAxis{
			Name:  axisName(c.Series, axes, 1),
			Type:  "value",
			Scale: opts.Bool(true),
		})
	}

	for i, s := range c.Series {
		data := make([]opts.LineData, len(s.Points))
		for j, p := range s.Points {
			data[j] = opts.LineData{Value: []interface{}{p.Time.UnixMilli(), p.Value}}
		}
		line.AddSeries(s.Label, data,
			charts.WithLineChartOpts(opts.LineChart{
				YAxisIndex: axes[i],
				ShowSymbol: opts.Bool(len(s.Points) == 1),
			}),
		)
	}
	return line.Render(w)
}
