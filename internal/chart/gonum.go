package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// renderGonum stacks one panel per series sharing the time window, the
// layout the print formats have always used for two measurements.
func renderGonum(w io.Writer, c Chart, f Format) error {
	series := c.Series
	if len(series) == 0 {
		series = []types.Series{{}}
	}

	rows := make([][]*plot.Plot, len(series))
	for i, s := range series {
		p, err := gonumPanel(c, s, i)
		if err != nil {
			return err
		}
		rows[i] = []*plot.Plot{p}
	}

	width, height := c.size()
	cw := vg.Length(width) * vg.Inch / dpi
	ch := vg.Length(height) * vg.Inch / dpi

	canvas, out, err := gonumCanvas(f, cw, ch)
	if err != nil {
		return err
	}
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      1,
		PadY:      6 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  4 * vg.Millimeter,
	}
	canvases := plot.Align(rows, tiles, draw.New(canvas))
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	return nil
}

func gonumPanel(c Chart, s types.Series, idx int) (*plot.Plot, error) {
	p := plot.New()
	if s.Label == "" {
		p.Title.Text = c.FullTitle()
	} else {
		title := s.Label + " " + rangeSummary(c.Range, s)
		if c.Title != "" && idx == 0 {
			title = c.Title
		}
		if s.Empty() {
			title += noDataSuffix
		}
		p.Title.Text = title
	}
	p.X.Label.Text = "Date"
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat(c.Range)}
	p.Y.Label.Text = s.Unit
	p.Add(plotter.NewGrid())

	if !s.Empty() {
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i].X = float64(pt.Time.Unix())
			xys[i].Y = pt.Value
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", s.Key, err)
		}
		line.LineStyle.Color = plotutil.Color(idx)
		points.Color = plotutil.Color(idx)
		points.Radius = 0
		if len(xys) == 1 {
			points.Radius = vg.Points(2)
		}
		p.Add(line, points)
		p.Legend.Add(s.Label, line)
		p.Legend.Top = true
	} else {
		p.Y.Min, p.Y.Max = 0, 1
	}

	// Set after Add, which widens the axes to fit the data.
	p.X.Min = float64(c.Range.Start.Unix())
	p.X.Max = float64(c.Range.EndExclusive().Unix())
	if p.Y.Min == p.Y.Max {
		p.Y.Min--
		p.Y.Max++
	}
	return p, nil
}

func gonumCanvas(f Format, w, h vg.Length) (vg.CanvasSizer, io.WriterTo, error) {
	switch f {
	case FormatPDF:
		c := vgpdf.New(w, h)
		return c, c, nil
	case FormatEPS:
		c := vgeps.New(w, h)
		return c, c, nil
	case FormatJPEG:
		c := vgimg.New(w, h)
		return c, vgimg.JpegCanvas{Canvas: c}, nil
	case FormatTIFF:
		c := vgimg.New(w, h)
		return c, vgimg.TiffCanvas{Canvas: c}, nil
	default:
		return nil, nil, fmt.Errorf("gonum: unsupported format %q", f)
	}
}
