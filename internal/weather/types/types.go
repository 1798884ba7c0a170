package types

import (
	"sort"
	"time"
)

// Measurement describes one named numeric quantity a station records.
type Measurement struct {
	// Key is the short command line name, e.g. "otemp".
	Key string `mapstructure:"key"`
	// Column is the database column the measurement is stored in.
	Column string `mapstructure:"column"`
	Label  string `mapstructure:"label"`
	Unit   string `mapstructure:"unit"`
	// Headers lists the backup file header names this measurement is read from.
	Headers []string `mapstructure:"headers"`
}

// Record is one parsed row of a backup file. It is immutable: values are
// copied in by NewRecord and only read back through accessors.
type Record struct {
	time   time.Time
	values map[string]float64
}

func NewRecord(t time.Time, values map[string]float64) Record {
	cp := make(map[string]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Record{time: t, values: cp}
}

func (r Record) Time() time.Time { return r.time }

// Value returns the measurement keyed by key and whether the row carried it.
func (r Record) Value(key string) (float64, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the measurement keys present in the record, sorted.
func (r Record) Keys() []string {
	out := make([]string, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Point struct {
	Time  time.Time
	Value float64
}

// Series is the chronologically ordered list of points for one measurement.
type Series struct {
	Key    string
	Label  string
	Unit   string
	Points []Point
}

func (s Series) Empty() bool { return len(s.Points) == 0 }

func (s Series) Len() int { return len(s.Points) }
