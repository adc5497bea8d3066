package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
)

// Dashboard exported for testing purposes
type Dashboard struct {
	Repo  *cases.Repository
	Clock *diary.Clock
}

// DashboardResponse is the summary shown on the diary home screen
type DashboardResponse struct {
	Stats    models.CaseStats   `json:"stats"`
	Today    []models.CaseEntry `json:"today"`
	Upcoming []models.CaseEntry `json:"upcoming"`
}

// DashboardHandler returns the caller's counts plus today's and upcoming cases
func (d Dashboard) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := d.Repo.List(ctx, api.UserID(r.Context()))
	if err != nil {
		caseError(w, r, "failed to get dashboard", err)
		return
	}

	respondJSON(w, http.StatusOK, DashboardResponse{
		Stats:    diary.Aggregate(list, d.Clock),
		Today:    nonNil(diary.TodaysCases(list, d.Clock)),
		Upcoming: nonNil(diary.UpcomingCases(list, d.Clock, diary.DefaultUpcomingWindow)),
	})
}

// CalendarHandler returns the days of a month that have a hearing, with their cases
func (d Dashboard) CalendarHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1 || year > 9999 {
		config.ErrorStatus("failed to parse year", http.StatusBadRequest, w, fmt.Errorf("invalid year %q", vars["year"]))
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		config.ErrorStatus("failed to parse month", http.StatusBadRequest, w, fmt.Errorf("invalid month %q", vars["month"]))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := d.Repo.List(ctx, api.UserID(r.Context()))
	if err != nil {
		caseError(w, r, "failed to get calendar", err)
		return
	}

	days := []diary.CalendarDay{}
	for _, cell := range diary.MonthCalendar(list, year, time.Month(month), d.Clock.Location()) {
		if len(cell.Cases) > 0 {
			days = append(days, cell)
		}
	}
	respondJSON(w, http.StatusOK, days)
}

func nonNil(list []models.CaseEntry) []models.CaseEntry {
	if list == nil {
		return []models.CaseEntry{}
	}
	return list
}
