package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/AlSimons/graph-ambient-weather/internal/backup"
	"github.com/AlSimons/graph-ambient-weather/internal/chart"
	"github.com/AlSimons/graph-ambient-weather/internal/cli"
	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/store/db"
	"github.com/AlSimons/graph-ambient-weather/internal/store/repository"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/catalog"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/selector"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// PlotResult describes the chart RunPlot wrote.
type PlotResult struct {
	Output string
	Source string
	Range  types.DateRange
	Points int
	NoData bool
}

// RunPlot loads records, selects the requested window and writes the chart.
// Records come from --file, then --db, then the newest backup under
// BACKUP_DIR, then the database. An empty selection still writes a chart.
func RunPlot(ctx context.Context, cfg config.Config, opts cli.PlotOptions, stdout io.Writer, logger *slog.Logger) (PlotResult, error) {
	cat, err := resolveCatalog(opts.Catalog)
	if err != nil {
		return PlotResult{}, err
	}
	measurements, err := cat.Resolve(opts.Keys)
	if err != nil {
		return PlotResult{}, err
	}

	records, rng, source, err := loadForPlot(ctx, cfg, opts, cat, logger)
	if err != nil {
		return PlotResult{}, err
	}

	series := selector.Select(records, rng, measurements, selector.Options{
		Strategy:  opts.Strategy,
		Threshold: opts.NumPoints,
	})
	c := chart.Chart{Title: opts.Title, Range: rng, Series: series}

	res := PlotResult{Output: opts.Output, Source: source, Range: rng, NoData: !c.HasData()}
	for _, s := range series {
		res.Points += s.Len()
	}
	if res.NoData {
		logger.Warn("no data in range", "source", source, "range", rng.String(), "data_types", opts.Keys)
	}

	if err := writeChart(c, opts.Output, opts.Format, stdout); err != nil {
		return res, err
	}
	logger.Info("chart written",
		"output", opts.Output,
		"format", opts.Format,
		"source", source,
		"range", rng.String(),
		"series", len(series),
		"points", res.Points,
	)
	return res, nil
}

func loadForPlot(ctx context.Context, cfg config.Config, opts cli.PlotOptions, cat *catalog.Catalog, logger *slog.Logger) ([]types.Record, types.DateRange, string, error) {
	path := opts.File
	if path == "" && !opts.DB && cfg.BackupDir != "" {
		latest, err := backup.FindLatest(cfg.BackupDir)
		if err != nil {
			return nil, types.DateRange{}, "", err
		}
		path = latest
	}

	if path != "" {
		records, stats, err := backup.Load(ctx, path, backup.Options{Catalog: cat, Keys: opts.Keys, Logger: logger})
		if err != nil {
			return nil, types.DateRange{}, "", err
		}
		logBackupStats(logger, path, stats)
		bounds, ok := selector.Bounds(records)
		return records, plotRange(opts.Start, opts.End, bounds, ok), path, nil
	}

	conn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return nil, types.DateRange{}, "", err
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("db close", "error", err)
		}
	}()
	repo := repository.NewRepository(conn, logger)

	q := repository.Query{Catalog: cat, Keys: opts.Keys, StationID: opts.Station}
	var rng types.DateRange
	if opts.Start.IsZero() || opts.End.IsZero() {
		bounds, ok, err := repo.Bounds(ctx, q)
		if err != nil {
			return nil, types.DateRange{}, "", err
		}
		rng = plotRange(opts.Start, opts.End, bounds, ok)
	} else {
		rng = plotRange(opts.Start, opts.End, types.DateRange{}, false)
	}
	q.Range = rng
	records, err := repo.GetRecords(ctx, q)
	if err != nil {
		return nil, types.DateRange{}, "", err
	}
	return records, rng, "sqlite:" + cfg.SQLitePath, nil
}

// plotRange fills missing ends from the data bounds. A lone date outside the
// data gives a one-day range; no dates and no data give today.
func plotRange(start, end time.Time, bounds types.DateRange, haveData bool) types.DateRange {
	switch {
	case start.IsZero() && end.IsZero():
		if haveData {
			return bounds
		}
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start, end = today, today
	case start.IsZero():
		start = end
		if haveData && bounds.Start.Before(end) {
			start = bounds.Start
		}
	case end.IsZero():
		end = start
		if haveData && bounds.End.After(start) {
			end = bounds.End
		}
	}
	return types.DateRange{Start: types.Midnight(start), End: types.Midnight(end)}
}

func logBackupStats(logger *slog.Logger, path string, stats backup.Stats) {
	logger.Info("backup loaded", "path", path, "rows", stats.Rows, "loaded", stats.Loaded, "skipped", stats.Skipped)
	if len(stats.Missing) > 0 {
		logger.Warn("measurements missing from backup header", "path", path, "missing", stats.Missing)
	}
}

// writeChart renders to stdout for "-", otherwise to path. A failed render
// leaves no partial file behind.
func writeChart(c chart.Chart, path string, format chart.Format, stdout io.Writer) error {
	if path == "-" {
		bw := bufio.NewWriter(stdout)
		if err := c.Render(bw, format); err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		return bw.Flush()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := c.Render(bw, format); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart: %w", err)
	}
	return nil
}
