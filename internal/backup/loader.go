// Package backup reads station backup files (delimited text with a header
// row) into weather records.
package backup

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/catalog"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// ErrNoTimeColumn is returned when the header names no date/time column.
var ErrNoTimeColumn = errors.New("no date/time column in header")

// timestampLayouts are tried in order. The WS-2000 writes "2006/01/02 15:04".
var timestampLayouts = []string{
	"2006/1/2 15:04",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
}

const ctxCheckEvery = 1024

type Options struct {
	Catalog *catalog.Catalog
	// Keys limits parsing to these measurements. Empty means every
	// measurement in the catalog.
	Keys []string
	// Comma is the field delimiter, ',' when zero.
	Comma  rune
	Logger *slog.Logger
}

// Stats counts what a load did with the rows after the header.
type Stats struct {
	Rows    int
	Loaded  int
	Skipped int
	// Missing lists requested measurements the header does not carry.
	Missing []string
}

// Load opens path and parses it. Failing to open or read the file is the only
// error; malformed rows are skipped and counted.
func Load(ctx context.Context, path string, opts Options) ([]types.Record, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open backup: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close backup", "path", path, "error", err)
		}
	}()

	records, stats, err := Parse(ctx, f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("read backup %s: %w", path, err)
	}
	return records, stats, nil
}

// Parse reads a header row followed by data rows. Records come back in input
// order.
func Parse(ctx context.Context, in io.Reader, opts Options) ([]types.Record, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Builtin(catalog.WS2000); err != nil {
			return nil, Stats{}, err
		}
	}
	measurements := cat.Measurements
	if len(opts.Keys) > 0 {
		var err error
		if measurements, err = cat.Resolve(opts.Keys); err != nil {
			return nil, Stats{}, err
		}
	}

	r := csv.NewReader(bufio.NewReader(in))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}

	var stats Stats
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	lay, err := newLayout(header, measurements)
	if err != nil {
		return nil, stats, err
	}
	stats.Missing = lay.missing
	if len(lay.missing) > 0 {
		logger.Warn("measurements not in backup header", "missing", lay.missing)
	}

	var out []types.Record
	for {
		if stats.Rows%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				stats.Skipped++
				logger.Debug("skipping malformed row", "line", pe.Line, "error", err)
				continue
			}
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows, err)
		}

		rec, err := lay.parse(row)
		if err != nil {
			stats.Skipped++
			line, _ := r.FieldPos(0)
			logger.Debug("skipping row", "line", line, "error", err)
			continue
		}
		out = append(out, rec)
		stats.Loaded++
	}

	logger.Debug("backup parsed", "rows", stats.Rows, "loaded", stats.Loaded, "skipped", stats.Skipped)
	return out, stats, nil
}

type column struct {
	key   string
	index int
}

// layout is where the timestamp and each measurement live in a row.
type layout struct {
	timeIdx  int
	clockIdx int // separate time-of-day column, -1 when the timestamp is combined
	columns  []column
	missing  []string
}

func newLayout(header []string, measurements []types.Measurement) (*layout, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
	}
	find := func(names ...string) int {
		for _, n := range names {
			n = normalizeHeader(n)
			for i, h := range norm {
				if h != "" && h == n {
					return i
				}
			}
		}
		return -1
	}

	lay := &layout{timeIdx: -1, clockIdx: -1}
	dateIdx, clockIdx := find("date"), find("time")
	switch {
	case dateIdx >= 0 && clockIdx >= 0:
		lay.timeIdx, lay.clockIdx = dateIdx, clockIdx
	default:
		lay.timeIdx = find("date_time", "datetime", "timestamp", "date", "time", "simple date", "date utc")
	}
	if lay.timeIdx < 0 {
		return nil, ErrNoTimeColumn
	}

	for _, m := range measurements {
		names := append(append([]string{}, m.Headers...), m.Column, m.Key, m.Label)
		idx := find(names...)
		if idx < 0 || idx == lay.timeIdx || idx == lay.clockIdx {
			lay.missing = append(lay.missing, m.Key)
			continue
		}
		lay.columns = append(lay.columns, column{key: m.Key, index: idx})
	}
	return lay, nil
}

func (l *layout) parse(row []string) (types.Record, error) {
	if l.timeIdx >= len(row) {
		return types.Record{}, fmt.Errorf("short row: %d fields", len(row))
	}
	stamp := row[l.timeIdx]
	if l.clockIdx >= 0 {
		if l.clockIdx >= len(row) {
			return types.Record{}, fmt.Errorf("short row: %d fields", len(row))
		}
		stamp += " " + row[l.clockIdx]
	}
	ts, err := ParseTimestamp(stamp)
	if err != nil {
		return types.Record{}, err
	}

	values := make(map[string]float64, len(l.columns))
	for _, c := range l.columns {
		if c.index >= len(row) {
			continue
		}
		v, ok, err := parseValue(row[c.index])
		if err != nil {
			return types.Record{}, fmt.Errorf("%s: %w", c.key, err)
		}
		if ok {
			values[c.key] = v
		}
	}
	return types.NewRecord(ts, values), nil
}

// ParseTimestamp accepts the station's date/time formats. Stamps without a
// zone are read as UTC; stamps with an offset are converted to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseValue reports ok=false for blank or placeholder cells; anything else
// that is not a number is an error.
func parseValue(cell string) (float64, bool, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "-", "--", "---", "n/a", "na", "null", "nan":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

// normalizeHeader lower-cases h, drops a trailing "(unit)" and keeps only
// letters and digits, so "Outdoor Temperature(℉)" matches "outdoor_temperature".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	if i := strings.IndexByte(h, '('); i >= 0 {
		h = h[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
