package diary

import (
	"sort"
	"time"

	"github.com/linesmerrill/case-diary-api/models"
)

// Aggregate summarizes cases for the dashboard. ByStatus only carries statuses that
// occur. Upcoming counts every case inside the default window, today's included.
func Aggregate(cases []models.CaseEntry, clock *Clock) models.CaseStats {
	stats := models.CaseStats{
		Total:    len(cases),
		ByStatus: make(map[models.CaseStatus]int),
	}
	for _, c := range cases {
		stats.ByStatus[c.Status]++
		if clock.IsUpcoming(c, DefaultUpcomingWindow) {
			stats.Upcoming++
		}
		if clock.IsToday(c) {
			stats.Today++
		}
	}
	return stats
}

// TodaysCases returns the cases with either date on today, in input order
func TodaysCases(cases []models.CaseEntry, clock *Clock) []models.CaseEntry {
	return CasesOnDay(cases, clock.Today(), clock.Location())
}

// UpcomingCases returns the cases inside the window that are not also on today,
// earliest next date first.
func UpcomingCases(cases []models.CaseEntry, clock *Clock, windowDays int) []models.CaseEntry {
	upcoming := make([]models.CaseEntry, 0)
	for _, c := range cases {
		if clock.IsUpcoming(c, windowDays) && !clock.IsToday(c) {
			upcoming = append(upcoming, c)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextDate.Before(upcoming[j].NextDate)
	})
	return upcoming
}

// CasesOnDay returns the cases with either date on day, in input order
func CasesOnDay(cases []models.CaseEntry, day Day, loc *time.Location) []models.CaseEntry {
	matched := make([]models.CaseEntry, 0)
	for _, c := range cases {
		if IsOnDay(c, day, loc) {
			matched = append(matched, c)
		}
	}
	return matched
}

// CalendarDay is one cell of a month view
type CalendarDay struct {
	Date  Day                `json:"date"`
	Cases []models.CaseEntry `json:"cases"`
}

// MonthCalendar returns every day of the month with the cases falling on it
func MonthCalendar(cases []models.CaseEntry, year int, month time.Month, loc *time.Location) []CalendarDay {
	first := Day{Year: year, Month: month, Day: 1}
	days := make([]CalendarDay, 0, 31)
	for d := first; d.Month == month; d = d.AddDays(1) {
		days = append(days, CalendarDay{Date: d, Cases: CasesOnDay(cases, d, loc)})
	}
	return days
}
