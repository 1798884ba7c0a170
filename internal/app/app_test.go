package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlSimons/graph-ambient-weather/internal/chart"
	"github.com/AlSimons/graph-ambient-weather/internal/cli"
	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/mqtt"
	"github.com/AlSimons/graph-ambient-weather/internal/store/db"
	"github.com/AlSimons/graph-ambient-weather/internal/store/migrate"
	"github.com/AlSimons/graph-ambient-weather/internal/store/repository"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/catalog"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/selector"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:             "dev",
		SQLiteDriver:       "sqlite3",
		SQLitePath:         filepath.Join(t.TempDir(), "ws2000.db"),
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
		PlotOutput:         "wxgraph.png",
		PlotMaxPoints:      1000,
		StationCatalog:     catalog.WS2000,
	}
}

// writeBackup writes hourly samples for days starting 2023-01-10.
func writeBackup(t *testing.T, path string, days int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Outdoor Temperature(℉),Outdoor Humidity(%)\n")
	start := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	for h := 0; h < days*24; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		fmt.Fprintf(&b, "%s,%.1f,%d\n", ts.Format("2006/1/2 15:04"), 20+float64(h%24), 60+h%30)
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func plotOpts(keys ...string) cli.PlotOptions {
	return cli.PlotOptions{
		Keys:      keys,
		NumPoints: 1000,
		Strategy:  selector.Auto,
		Catalog:   catalog.WS2000,
		Output:    "-",
		Format:    chart.FormatSVG,
	}
}

func TestRunPlot_FromFileToStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Backup-20230113.CSV")
	writeBackup(t, path, 3)

	opts := plotOpts("otemp")
	opts.File = path
	var out bytes.Buffer
	res, err := RunPlot(context.Background(), testConfig(t), opts, &out, testLogger())
	require.NoError(t, err)

	assert.False(t, res.NoData)
	assert.Equal(t, 72, res.Points)
	assert.Equal(t, "2023-01-10 to 2023-01-12", res.Range.String())
	assert.Equal(t, path, res.Source)
	assert.Contains(t, out.String(), "<svg")
	assert.Contains(t, out.String(), "Outdoor temperature 2023-01-10 to 2023-01-12 (3 days, 72 points)")
}

func TestRunPlot_AggregatesLongRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Backup-20230210.CSV")
	writeBackup(t, path, 30)

	opts := plotOpts("otemp", "ohumid")
	opts.File = path
	opts.NumPoints = 100
	res, err := RunPlot(context.Background(), testConfig(t), opts, &bytes.Buffer{}, testLogger())
	require.NoError(t, err)
	// Two daily-average series of 30 points each.
	assert.Equal(t, 60, res.Points)
}

func TestRunPlot_EmptyRangeWritesNoDataChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Backup-20230113.CSV")
	writeBackup(t, path, 3)

	opts := plotOpts("otemp")
	opts.File = path
	opts.Start = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	opts.End = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	opts.Output = filepath.Join(dir, "empty.svg")

	res, err := RunPlot(context.Background(), testConfig(t), opts, &bytes.Buffer{}, testLogger())
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Zero(t, res.Points)

	body, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Contains(t, string(body), "no data")
}

func TestRunPlot_UsesLatestBackup(t *testing.T) {
	dir := t.TempDir()
	writeBackup(t, filepath.Join(dir, "20230101", "Backup-20230101.CSV"), 1)
	writeBackup(t, filepath.Join(dir, "20230113", "Backup-20230113.CSV"), 3)

	cfg := testConfig(t)
	cfg.BackupDir = dir
	res, err := RunPlot(context.Background(), cfg, plotOpts("otemp"), &bytes.Buffer{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20230113", "Backup-20230113.CSV"), res.Source)
}

func TestRunPlot_Errors(t *testing.T) {
	cfg := testConfig(t)

	_, err := RunPlot(context.Background(), cfg, plotOpts("snowfall"), &bytes.Buffer{}, testLogger())
	var ue *types.UsageError
	require.True(t, errors.As(err, &ue), "unknown measurement: %v", err)

	opts := plotOpts("otemp")
	opts.Catalog = "no-such-station"
	_, err = RunPlot(context.Background(), cfg, opts, &bytes.Buffer{}, testLogger())
	require.True(t, errors.As(err, &ue), "unknown catalog: %v", err)

	opts = plotOpts("otemp")
	opts.File = filepath.Join(t.TempDir(), "missing.csv")
	_, err = RunPlot(context.Background(), cfg, opts, &bytes.Buffer{}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, errors.As(err, &ue))
}

func TestRunImportThenPlotFromDB(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.BackupDir = dir
	writeBackup(t, filepath.Join(dir, "20230113", "Backup-20230113.CSV"), 3)
	ctx := context.Background()

	res, err := RunImport(ctx, cfg, cli.LoadOptions{Command: cli.CmdImport, Catalog: catalog.WS2000}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 72, res.Inserted)

	// Importing the same file again replaces rows.
	res, err = RunImport(ctx, cfg, cli.LoadOptions{Command: cli.CmdImport, Path: res.Path, Catalog: catalog.WS2000}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 72, res.Inserted)

	opts := plotOpts("otemp")
	opts.DB = true
	opts.Start = time.Date(2023, 1, 11, 0, 0, 0, 0, time.UTC)
	plot, err := RunPlot(ctx, cfg, opts, &bytes.Buffer{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "2023-01-11 to 2023-01-12", plot.Range.String())
	assert.Equal(t, 48, plot.Points)
	assert.Equal(t, "sqlite:"+cfg.SQLitePath, plot.Source)
}

func TestRunLoad_Migrate(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, RunLoad(context.Background(), cfg, cli.LoadOptions{Command: cli.CmdMigrate}, testLogger()))

	conn, err := db.Open(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer func() { _ = db.Close(conn) }()
	applied, err := migrate.Run(context.Background(), conn, testLogger())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestReadingHandler(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	require.NoError(t, RunMigrate(ctx, cfg, testLogger()))

	conn, err := db.Open(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer func() { _ = db.Close(conn) }()
	repo := repository.NewRepository(conn, testLogger())

	temp, hum := 21.5, 40.0
	handle := readingHandler(repo, testLogger())
	require.NoError(t, handle(ctx, mqtt.Telemetry{
		StationID:   "porch",
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Temperature: &temp,
		Humidity:    &hum,
	}))

	cat, err := catalog.Builtin(catalog.DHT22)
	require.NoError(t, err)
	recs, err := repo.GetRecords(ctx, repository.Query{Catalog: cat, StationID: "porch"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	v, ok := recs[0].Value("temp")
	assert.True(t, ok)
	assert.Equal(t, 21.5, v)
}

func TestPlotRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }
	bounds := types.DateRange{Start: day(10), End: day(20)}

	tests := []struct {
		name       string
		start, end time.Time
		haveData   bool
		want       string
	}{
		{name: "both from data", haveData: true, want: "2023-01-10 to 2023-01-20"},
		{name: "start given", start: day(15), haveData: true, want: "2023-01-15 to 2023-01-20"},
		{name: "end given", end: day(12), haveData: true, want: "2023-01-10 to 2023-01-12"},
		{name: "both given", start: day(1), end: day(31), haveData: true, want: "2023-01-01 to 2023-01-31"},
		{name: "start after data", start: day(25), haveData: true, want: "2023-01-25 to 2023-01-25"},
		{name: "end before data", end: day(5), haveData: true, want: "2023-01-05 to 2023-01-05"},
		{name: "start without data", start: day(3), want: "2023-01-03 to 2023-01-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := types.DateRange{}
			if tt.haveData {
				b = bounds
			}
			assert.Equal(t, tt.want, plotRange(tt.start, tt.end, b, tt.haveData).String())
		})
	}

	today := plotRange(time.Time{}, time.Time{}, types.DateRange{}, false)
	assert.Equal(t, 1, today.Days())
}
