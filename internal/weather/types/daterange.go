package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format of the dates accepted on the command line.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// DateRange is an inclusive span of calendar days. Start and End are stored
// as midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates start and end to their calendar day. start after
// end is a usage error.
func NewDateRange(start, end time.Time) (DateRange, error) {
	s := Midnight(start)
	e := Midnight(end)
	if s.After(e) {
		return DateRange{}, &UsageError{Msg: fmt.Sprintf("start date %s is after end date %s", s.Format(DateLayout), e.Format(DateLayout))}
	}
	return DateRange{Start: s, End: e}, nil
}

// ParseDateRange parses two YYYY-MM-DD dates.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// ParseDate parses a YYYY-MM-DD date, reporting bad input as a usage error.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &UsageError{Msg: fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", s), Err: err}
	}
	return t, nil
}

// Contains reports whether t falls on one of the range's days.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.EndExclusive())
}

// EndExclusive is midnight following the last day of the range.
func (r DateRange) EndExclusive() time.Time {
	return r.End.Add(day)
}

// Days is the number of calendar days covered, at least 1.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start)/day) + 1
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

// Midnight returns the start of t's UTC calendar day. Contains and the daily
// buckets both work on UTC days.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
