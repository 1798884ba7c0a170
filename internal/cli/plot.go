// Package cli parses the command lines of the wx tools.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/AlSimons/graph-ambient-weather/internal/chart"
	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/selector"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// ErrHelp is returned when -h/--help was given; usage has been printed.
var ErrHelp = pflag.ErrHelp

// PlotOptions is a parsed plotter command line. Zero Start or End means the
// bound comes from the data.
type PlotOptions struct {
	Keys      []string
	Start     time.Time
	End       time.Time
	NumPoints int
	Strategy  selector.Strategy
	File      string
	DB        bool
	Station   string
	Catalog   string
	Output    string
	Format    chart.Format
	Title     string
}

// ParsePlot parses args (without the program name) for a plotter that draws
// exactly nMeasurements measurements. Defaults come from cfg. Usage problems
// are returned as *types.UsageError carrying the usage text.
func ParsePlot(prog string, args []string, nMeasurements int, cfg config.Config, out io.Writer) (PlotOptions, error) {
	defaultKeys := "otemp"
	if nMeasurements == 2 {
		defaultKeys = "otemp,ohumid"
	}

	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(out, "Usage of %s:\n%s", prog, fs.FlagUsages())
	}

	dataType := fs.StringP("data-type", "d", defaultKeys, fmt.Sprintf("comma separated measurement names (%d)", nMeasurements))
	start := fs.StringP("start-date", "s", "", "first day to plot, YYYY-MM-DD (default: first day in the data)")
	end := fs.StringP("end-date", "e", "", "last day to plot, YYYY-MM-DD (default: last day in the data)")
	numPoints := fs.IntP("num-points", "n", cfg.PlotMaxPoints, "most raw points to plot before summarizing by day")
	useMin := fs.Bool("min", false, "plot the daily minimum")
	useMax := fs.Bool("max", false, "plot the daily maximum")
	useAvg := fs.Bool("avg", false, "plot the daily average")
	highLow := fs.Bool("highlow", false, "plot daily minimum and maximum together")
	summarize := fs.String("summarize", "", "summary strategy: auto, raw, sample, avg, min, max, highlow")
	file := fs.StringP("file", "f", "", "backup file to read (default: newest Backup-*.CSV under BACKUP_DIR)")
	useDB := fs.Bool("db", false, "read from the SQLite database instead of a backup file")
	station := fs.String("station", cfg.MQTTStationID, "station id for catalogs recorded per station")
	catalogName := fs.String("catalog", cfg.StationCatalog, "station catalog: ws2000, dht22 or a catalog file")
	output := fs.StringP("output", "o", cfg.PlotOutput, "output file, - for standard output")
	format := fs.String("format", "", "chart format: png, svg, html, pdf, eps, jpg, tiff (default: from output name)")
	title := fs.String("title", "", "chart title (default: measurements, dates and point count)")

	fail := func(err error) (PlotOptions, error) {
		return PlotOptions{}, &types.UsageError{Msg: fmt.Sprintf("%v\n\nUsage of %s:\n%s", err, prog, fs.FlagUsages()), Err: err}
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return PlotOptions{}, ErrHelp
		}
		return fail(err)
	}
	if fs.NArg() > 0 {
		return fail(fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " ")))
	}

	opts := PlotOptions{
		NumPoints: *numPoints,
		File:      strings.TrimSpace(*file),
		DB:        *useDB,
		Station:   strings.TrimSpace(*station),
		Catalog:   strings.TrimSpace(*catalogName),
		Output:    strings.TrimSpace(*output),
		Title:     *title,
	}

	for _, k := range strings.Split(*dataType, ",") {
		if k = strings.TrimSpace(k); k != "" {
			opts.Keys = append(opts.Keys, k)
		}
	}
	if len(opts.Keys) != nMeasurements {
		return fail(fmt.Errorf("%s plots exactly %d data type(s), got %d (%q)", prog, nMeasurements, len(opts.Keys), *dataType))
	}
	if dup := duplicate(opts.Keys); dup != "" {
		return fail(fmt.Errorf("data type %q given twice", dup))
	}

	if opts.NumPoints <= 0 {
		return fail(fmt.Errorf("--num-points must be positive, got %d", opts.NumPoints))
	}
	if opts.File != "" && opts.DB {
		return fail(errors.New("--file and --db are mutually exclusive"))
	}
	if opts.Output == "" {
		return fail(errors.New("--output must not be empty"))
	}

	var err error
	if *start != "" {
		if opts.Start, err = types.ParseDate(*start); err != nil {
			return fail(err)
		}
	}
	if *end != "" {
		if opts.End, err = types.ParseDate(*end); err != nil {
			return fail(err)
		}
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && opts.Start.After(opts.End) {
		return fail(fmt.Errorf("start date %s is after end date %s", *start, *end))
	}

	if opts.Strategy, err = strategy(*useMin, *useMax, *useAvg, *highLow, *summarize); err != nil {
		return fail(err)
	}
	if opts.Strategy == selector.HighLow && len(opts.Keys) != 1 {
		return fail(errors.New("--highlow plots a single data type"))
	}

	if *format != "" {
		opts.Format, err = chart.ParseFormat(*format)
	} else {
		opts.Format, err = chart.FormatFromPath(opts.Output)
	}
	if err != nil {
		return fail(err)
	}
	return opts, nil
}

// strategy folds the summary flags into one strategy; at most one may be set.
func strategy(useMin, useMax, useAvg, highLow bool, summarize string) (selector.Strategy, error) {
	var chosen []selector.Strategy
	if useMin {
		chosen = append(chosen, selector.DailyMin)
	}
	if useMax {
		chosen = append(chosen, selector.DailyMax)
	}
	if useAvg {
		chosen = append(chosen, selector.DailyAvg)
	}
	if highLow {
		chosen = append(chosen, selector.HighLow)
	}
	if summarize != "" {
		st, err := selector.ParseStrategy(summarize)
		if err != nil {
			return "", err
		}
		chosen = append(chosen, st)
	}
	switch len(chosen) {
	case 0:
		return selector.Auto, nil
	case 1:
		return chosen[0], nil
	default:
		return "", errors.New("--min, --max, --avg, --highlow and --summarize are mutually exclusive")
	}
}

func duplicate(keys []string) string {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return k
		}
		seen[k] = true
	}
	return ""
}
