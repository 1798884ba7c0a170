// Package selector filters weather records to a date range and reduces long
// ranges to one value per day so charts stay readable.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// DefaultThreshold is the point count above which Auto switches from raw
// samples to daily averages.
const DefaultThreshold = 1000

type Strategy string

const (
	// Auto plots raw samples while they fit under the threshold, otherwise
	// daily averages.
	Auto Strategy = "auto"
	Raw  Strategy = "raw"
	// Sample keeps every k-th record so at most Threshold points remain.
	Sample   Strategy = "sample"
	DailyAvg Strategy = "avg"
	DailyMin Strategy = "min"
	DailyMax Strategy = "max"
	// HighLow yields two series per measurement: daily minimum and maximum.
	HighLow Strategy = "highlow"
)

var strategies = []Strategy{Auto, Raw, Sample, DailyAvg, DailyMin, DailyMax, HighLow}

func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Auto, nil
	}
	for _, st := range strategies {
		if string(st) == s {
			return st, nil
		}
	}
	names := make([]string, len(strategies))
	for i, st := range strategies {
		names[i] = string(st)
	}
	return "", &types.UsageError{Msg: fmt.Sprintf("invalid summary %q (allowed: %s)", s, strings.Join(names, ", "))}
}

// Daily reports whether the strategy buckets by calendar day.
func (s Strategy) Daily() bool {
	switch s {
	case DailyAvg, DailyMin, DailyMax, HighLow:
		return true
	}
	return false
}

type Options struct {
	Strategy  Strategy
	Threshold int
}

func (o Options) threshold() int {
	if o.Threshold <= 0 {
		return DefaultThreshold
	}
	return o.Threshold
}

// Select builds one series per measurement (two for HighLow) from the records
// inside rng. A record lacking a measurement only drops out of that
// measurement's series. Every series is in ascending time order; daily
// strategies produce at most one point per day.
func Select(records []types.Record, rng types.DateRange, measurements []types.Measurement, opts Options) []types.Series {
	raw := make([][]types.Point, len(measurements))
	most := 0
	for i, m := range measurements {
		raw[i] = filter(records, rng, m.Key)
		if len(raw[i]) > most {
			most = len(raw[i])
		}
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = Auto
	}
	// Both series of a two-measurement chart share one resolution.
	if strategy == Auto {
		strategy = Raw
		if most > opts.threshold() {
			strategy = DailyAvg
		}
	}

	var out []types.Series
	for i, m := range measurements {
		pts := raw[i]
		switch strategy {
		case Raw:
			out = append(out, newSeries(m, "", pts))
		case Sample:
			out = append(out, newSeries(m, "", sample(pts, opts.threshold())))
		case DailyAvg:
			out = append(out, newSeries(m, "avg", reduceDaily(pts, mean)))
		case DailyMin:
			out = append(out, newSeries(m, "min", reduceDaily(pts, minimum)))
		case DailyMax:
			out = append(out, newSeries(m, "max", reduceDaily(pts, maximum)))
		case HighLow:
			out = append(out,
				newSeries(m, "min", reduceDaily(pts, minimum)),
				newSeries(m, "max", reduceDaily(pts, maximum)),
			)
		default:
			out = append(out, newSeries(m, "", pts))
		}
	}
	return out
}

// Bounds returns the days covered by records, false when there are none.
func Bounds(records []types.Record) (types.DateRange, bool) {
	if len(records) == 0 {
		return types.DateRange{}, false
	}
	lo, hi := records[0].Time(), records[0].Time()
	for _, r := range records[1:] {
		if r.Time().Before(lo) {
			lo = r.Time()
		}
		if r.Time().After(hi) {
			hi = r.Time()
		}
	}
	rng, err := types.NewDateRange(lo, hi)
	if err != nil {
		return types.DateRange{}, false
	}
	return rng, true
}

func filter(records []types.Record, rng types.DateRange, key string) []types.Point {
	var pts []types.Point
	for _, r := range records {
		if !rng.Contains(r.Time()) {
			continue
		}
		v, ok := r.Value(key)
		if !ok {
			continue
		}
		pts = append(pts, types.Point{Time: r.Time(), Value: v})
	}
	// Backup rows are already in time order; the stable sort only matters
	// for files concatenated out of order.
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	return pts
}

func sample(pts []types.Point, limit int) []types.Point {
	if len(pts) <= limit {
		return pts
	}
	step := (len(pts) + limit - 1) / limit
	out := make([]types.Point, 0, limit)
	for i := 0; i < len(pts); i += step {
		out = append(out, pts[i])
	}
	return out
}

func newSeries(m types.Measurement, summary string, pts []types.Point) types.Series {
	s := types.Series{Key: m.Key, Label: m.Label, Unit: m.Unit, Points: pts}
	if summary != "" {
		s.Key = m.Key + ":" + summary
		s.Label = summaryTitle(summary) + " " + m.Label
	}
	return s
}

func summaryTitle(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
