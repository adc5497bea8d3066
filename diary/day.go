// Package diary holds the read side of the case diary: deciding which cases fall on a
// day or inside a window, composing list filters, summarizing a collection for the
// dashboard, merging a case's history feed and exporting cases as CSV.
//
// Everything here works on a snapshot slice handed in by the caller and never touches
// the database.
package diary

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of a Day
const DayLayout = "2006-01-02"

// Day is a calendar date without a time of day or zone
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t as seen in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(orUTC(loc)).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a yyyy-mm-dd string
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

// Start returns midnight at the beginning of d in loc
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, orUTC(loc))
}

// End returns the last representable instant of d in loc
func (d Day) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc).Add(-time.Nanosecond)
}

// AddDays returns the date n days after d. n may be negative.
func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC), time.UTC)
}

// Before reports whether d comes strictly before other
func (d Day) Before(other Day) bool {
	return d.ordinal() < other.ordinal()
}

// After reports whether d comes strictly after other
func (d Day) After(other Day) bool {
	return d.ordinal() > other.ordinal()
}

// IsZero reports whether d is the zero Day
func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as yyyy-mm-dd
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a yyyy-mm-dd string
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Day) ordinal() int {
	return d.Year*10000 + int(d.Month)*100 + d.Day
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
