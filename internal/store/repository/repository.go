package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/catalog"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// TimeLayout is how sample times are stored. Text order is time order.
const TimeLayout = "2006-01-02 15:04:05"

//go:embed sql/insert-reading.sql
var insertReadingSQL string

// Query selects rows of one catalog's table. A zero Range means all rows,
// empty Keys means every measurement of the catalog.
type Query struct {
	Catalog   *catalog.Catalog
	Range     types.DateRange
	Keys      []string
	StationID string
}

type WeatherRepository interface {
	InsertRecords(ctx context.Context, cat *catalog.Catalog, stationID string, records []types.Record) (int, error)
	GetRecords(ctx context.Context, q Query) ([]types.Record, error)
	Bounds(ctx context.Context, q Query) (types.DateRange, bool, error)
	InsertReading(ctx context.Context, stationID string, ts time.Time, temperature *float64, humidity *float64) error
}

type repositoryImpl struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) WeatherRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &repositoryImpl{db: db, logger: logger}
}

// InsertRecords writes records in one transaction. A row whose time already
// exists is replaced, so re-importing an overlapping backup is harmless.
func (r *repositoryImpl) InsertRecords(ctx context.Context, cat *catalog.Catalog, stationID string, records []types.Record) (int, error) {
	if cat.StationColumn != "" && stationID == "" {
		return 0, fmt.Errorf("catalog %s: station id is required", cat.Name)
	}

	cols := []string{cat.TimeColumn}
	if cat.StationColumn != "" {
		cols = append(cols, cat.StationColumn)
	}
	for _, m := range cat.Measurements {
		cols = append(cols, m.Column)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmtSQL := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", cat.Table, strings.Join(cols, ", "), placeholders)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("close insert statement", "error", err)
		}
	}()

	args := make([]any, len(cols))
	for _, rec := range records {
		args = args[:0]
		args = append(args, rec.Time().UTC().Format(TimeLayout))
		if cat.StationColumn != "" {
			args = append(args, stationID)
		}
		for _, m := range cat.Measurements {
			if v, ok := rec.Value(m.Key); ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert %s row %s: %w", cat.Table, rec.Time().UTC().Format(TimeLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// GetRecords returns the matching rows in ascending time. NULL columns are
// left out of the record.
func (r *repositoryImpl) GetRecords(ctx context.Context, q Query) ([]types.Record, error) {
	measurements := q.Catalog.Measurements
	if len(q.Keys) > 0 {
		var err error
		measurements, err = q.Catalog.Resolve(q.Keys)
		if err != nil {
			return nil, err
		}
	}

	cols := []string{q.Catalog.TimeColumn}
	for _, m := range measurements {
		cols = append(cols, m.Column)
	}
	where, args := r.where(q)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s", strings.Join(cols, ", "), q.Catalog.Table, where, q.Catalog.TimeColumn)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Catalog.Table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("close records rows", "table", q.Catalog.Table, "error", err)
		}
	}()

	var out []types.Record
	var ts string
	nulls := make([]sql.NullFloat64, len(measurements))
	dest := make([]any, 0, len(cols))
	dest = append(dest, &ts)
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		t, err := parseStoredTime(ts)
		if err != nil {
			return nil, err
		}
		values := make(map[string]float64, len(measurements))
		for i, m := range measurements {
			if nulls[i].Valid {
				values[m.Key] = nulls[i].Float64
			}
		}
		out = append(out, types.NewRecord(t, values))
	}
	return out, rows.Err()
}

// Bounds is the span of days covered by the matching rows; false when none.
func (r *repositoryImpl) Bounds(ctx context.Context, q Query) (types.DateRange, bool, error) {
	where, args := r.where(Query{Catalog: q.Catalog, StationID: q.StationID})
	query := fmt.Sprintf("SELECT MIN(%[1]s), MAX(%[1]s) FROM %[2]s%[3]s", q.Catalog.TimeColumn, q.Catalog.Table, where)

	var lo, hi sql.NullString
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&lo, &hi); err != nil {
		return types.DateRange{}, false, fmt.Errorf("bounds %s: %w", q.Catalog.Table, err)
	}
	if !lo.Valid || !hi.Valid {
		return types.DateRange{}, false, nil
	}
	first, err := parseStoredTime(lo.String)
	if err != nil {
		return types.DateRange{}, false, err
	}
	last, err := parseStoredTime(hi.String)
	if err != nil {
		return types.DateRange{}, false, err
	}
	rng, err := types.NewDateRange(first, last)
	if err != nil {
		return types.DateRange{}, false, err
	}
	return rng, true, nil
}

func (r *repositoryImpl) InsertReading(ctx context.Context, stationID string, ts time.Time, temperature *float64, humidity *float64) error {
	if stationID == "" {
		return fmt.Errorf("station id is required")
	}
	if humidity != nil && (*humidity < 0 || *humidity > 100) {
		return fmt.Errorf("humidity_pct out of range: %f (must be 0-100)", *humidity)
	}

	var tempVal, humidityVal any
	if temperature != nil {
		tempVal = *temperature
	}
	if humidity != nil {
		humidityVal = *humidity
	}

	if _, err := r.db.ExecContext(ctx, insertReadingSQL, stationID, ts.UTC().Format(TimeLayout), tempVal, humidityVal); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (r *repositoryImpl) where(q Query) (string, []any) {
	var conds []string
	var args []any
	if !q.Range.IsZero() {
		conds = append(conds, q.Catalog.TimeColumn+" >= ?", q.Catalog.TimeColumn+" < ?")
		args = append(args, q.Range.Start.Format(TimeLayout), q.Range.EndExclusive().Format(TimeLayout))
	}
	if q.StationID != "" && q.Catalog.StationColumn != "" {
		conds = append(conds, q.Catalog.StationColumn+" = ?")
		args = append(args, q.StationID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339Nano, s)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}
