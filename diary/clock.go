package diary

import (
	"time"

	"github.com/linesmerrill/case-diary-api/models"
)

// DefaultUpcomingWindow is the number of calendar days, today included, counted as upcoming
const DefaultUpcomingWindow = 7

// Clock fixes what "now" and "today" mean for a set of classifications
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock reading the system time in loc
func NewClock(loc *time.Location) *Clock {
	return &Clock{loc: orUTC(loc), now: time.Now}
}

// WithNow returns a copy of the clock that reads the time from now
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

// Location returns the zone used to cut instants into days
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the clock's location
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar date
func (c *Clock) Today() Day {
	return DayOf(c.now(), c.loc)
}

// IsToday reports whether either date of the case falls on today
func (c *Clock) IsToday(entry models.CaseEntry) bool {
	return IsOnDay(entry, c.Today(), c.loc)
}

// IsUpcoming reports whether the next date lies within the windowDays calendar days
// starting today, from the start of today to the end of the last window day, both
// bounds included. The next date is compared as an instant, not truncated.
func (c *Clock) IsUpcoming(entry models.CaseEntry, windowDays int) bool {
	if windowDays <= 0 {
		return false
	}
	today := c.Today()
	start := today.Start(c.loc)
	end := today.AddDays(windowDays - 1).End(c.loc)
	return !entry.NextDate.Before(start) && !entry.NextDate.After(end)
}

// IsOnDay reports whether the previous or the next date of the case falls on day.
// Both dates are cut to their calendar date in loc before comparing.
func IsOnDay(entry models.CaseEntry, day Day, loc *time.Location) bool {
	return DayOf(entry.PreviousDate, loc) == day || DayOf(entry.NextDate, loc) == day
}

// IsPast reports whether the next date is strictly earlier than ref
func IsPast(entry models.CaseEntry, ref time.Time) bool {
	return entry.NextDate.Before(ref)
}
