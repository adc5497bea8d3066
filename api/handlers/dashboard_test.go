package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/case-diary-api/api/handlers"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
)

func TestDashboard_DashboardHandler(t *testing.T) {
	db, _ := caseDB(sampleCases())
	d := handlers.Dashboard{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/dashboard", nil))
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DashboardHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got handlers.DashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

	assert.Equal(t, 3, got.Stats.Total)
	assert.Equal(t, 1, got.Stats.Today)
	assert.Equal(t, 2, got.Stats.Upcoming)
	assert.Equal(t, 1, got.Stats.ByStatus[models.StatusSettled])

	require.Len(t, got.Today, 1)
	assert.Equal(t, "case-1", got.Today[0].ID)
	require.Len(t, got.Upcoming, 1)
	assert.Equal(t, "case-2", got.Upcoming[0].ID)
}

func TestDashboard_DashboardHandlerEmpty(t *testing.T) {
	db, _ := caseDB(nil)
	d := handlers.Dashboard{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/dashboard", nil))
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DashboardHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"today":[]`)
	assert.Contains(t, rr.Body.String(), `"upcoming":[]`)
}

func TestDashboard_CalendarHandler(t *testing.T) {
	db, _ := caseDB(sampleCases())
	d := handlers.Dashboard{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/calendar/2024/6", nil))
	req = mux.SetURLVars(req, map[string]string{"year": "2024", "month": "6"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.CalendarHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []diary.CalendarDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	dates := []string{}
	for _, g := range got {
		dates = append(dates, g.Date.String())
	}
	assert.Equal(t, []string{"2024-06-01", "2024-06-10", "2024-06-14"}, dates)
}

func TestDashboard_CalendarHandlerBadMonth(t *testing.T) {
	db, _ := caseDB(nil)
	d := handlers.Dashboard{Repo: repository(db), Clock: testClock()}

	for _, month := range []string{"0", "13", "june"} {
		req := asUser(httptest.NewRequest("GET", "/api/v1/calendar/2024/"+month, nil))
		req = mux.SetURLVars(req, map[string]string{"year": "2024", "month": month})
		rr := httptest.NewRecorder()
		http.HandlerFunc(d.CalendarHandler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, month)
	}
}
