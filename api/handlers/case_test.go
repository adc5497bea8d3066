package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/case-diary-api/api/handlers"
	"github.com/linesmerrill/case-diary-api/databases/mocks"
	"github.com/linesmerrill/case-diary-api/models"
)

func TestCase_CasesHandlerWithoutSession(t *testing.T) {
	db, _ := caseDB(sampleCases())
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := httptest.NewRequest("GET", "/api/v1/cases", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestCase_CasesHandlerFilters(t *testing.T) {
	db, _ := caseDB(sampleCases())
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter", "", []string{"case-1", "case-2", "case-3"}},
		{"text", "?q=MILLER", []string{"case-2"}},
		{"status", "?status=hearing", []string{"case-1"}},
		{"upcoming", "?date=upcoming", []string{"case-2"}},
		{"past", "?date=past", []string{"case-1", "case-3"}},
		{"combined", "?q=smith&date=past", []string{"case-1"}},
		{"nothing matches", "?q=smith&date=upcoming", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest("GET", "/api/v1/cases"+tt.query, nil))
			rr := httptest.NewRecorder()
			http.HandlerFunc(c.CasesHandler).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var got []models.CaseEntry
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			ids := []string{}
			for _, g := range got {
				ids = append(ids, g.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCase_CasesHandlerRejectsUnknownStatus(t *testing.T) {
	db, _ := caseDB(sampleCases())
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/cases?status=closed", nil))
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "failed to get cases", body.Response.Message)
}

func TestCase_ExportCasesHandler(t *testing.T) {
	db, _ := caseDB(sampleCases())
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/cases/export?status=active", nil))
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ExportCasesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="legal-cases-2024-06-10.csv"`, rr.Header().Get("Content-Disposition"))

	lines := strings.Split(rr.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Previous Date,Next Date,Status,Case Details,Created,Updated", lines[0])
	assert.Equal(t, `case-2,2024-06-01,2024-06-14,active,"Estate of Miller",2024-02-01 00:00:00,2024-06-01 00:00:00`, lines[1])
}

func TestCase_CasesOnDayHandler(t *testing.T) {
	db, _ := caseDB(sampleCases())
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/cases/day/2024-06-01", nil))
	req = mux.SetURLVars(req, map[string]string{"date": "2024-06-01"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasesOnDayHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []models.CaseEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "case-2", got[0].ID)
}

func TestCase_CasesOnDayHandlerBadDate(t *testing.T) {
	db, _ := caseDB(nil)
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/cases/day/june", nil))
	req = mux.SetURLVars(req, map[string]string{"date": "june"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasesOnDayHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CaseByIDHandlerNotFound(t *testing.T) {
	db, conn := caseDB(nil)
	singleResultHelper := &mocks.SingleResultHelper{}
	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/cases/missing", nil))
	req = mux.SetURLVars(req, map[string]string{"case_id": "missing"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_CaseByIDHandler(t *testing.T) {
	db, conn := caseDB(nil)
	stored := sampleCases()[0]
	singleResultHelper := &mocks.SingleResultHelper{}
	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CaseEntry)
		**arg = stored
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("GET", "/api/v1/cases/case-1", nil))
	req = mux.SetURLVars(req, map[string]string{"case_id": "case-1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseByIDHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.CaseEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, stored.CaseDetails, got.CaseDetails)
	assert.Equal(t, models.StatusHearing, got.Status)
}

func TestCase_CreateCaseHandlerValidation(t *testing.T) {
	db, conn := caseDB(nil)
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	tests := []struct {
		name string
		body string
	}{
		{"blank details", `{"previousDate":"2024-06-01","nextDate":"2024-06-20","status":"active","caseDetails":"   "}`},
		{"missing next date", `{"previousDate":"2024-06-01","status":"active","caseDetails":"Doe"}`},
		{"unknown status", `{"previousDate":"2024-06-01","nextDate":"2024-06-20","status":"closed","caseDetails":"Doe"}`},
		{"bad date", `{"previousDate":"first of june","nextDate":"2024-06-20","status":"active","caseDetails":"Doe"}`},
		{"not json", `previousDate=2024-06-01`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest("POST", "/api/v1/cases", strings.NewReader(tt.body)))
			rr := httptest.NewRecorder()
			http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCase_CreateCaseHandler(t *testing.T) {
	db, conn := caseDB(nil)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	body := `{"previousDate":"2024-06-01","nextDate":"2024-06-20T14:30:00Z","status":"active","caseDetails":"  Doe v. Roe  "}`
	req := asUser(httptest.NewRequest("POST", "/api/v1/cases", strings.NewReader(body)))
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got models.CaseEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Doe v. Roe", got.CaseDetails)
	assert.Equal(t, testUserID, got.UserID)
	assert.True(t, got.PreviousDate.Equal(day(2024, time.June, 1)))
	assert.True(t, got.NextDate.Equal(time.Date(2024, time.June, 20, 14, 30, 0, 0, time.UTC)))
	conn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCase_DeleteCaseHandler(t *testing.T) {
	db, conn := caseDB(nil)
	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)
	c := handlers.Case{Repo: repository(db), Clock: testClock()}

	req := asUser(httptest.NewRequest("DELETE", "/api/v1/cases/case-1", nil))
	req = mux.SetURLVars(req, map[string]string{"case_id": "case-1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteCaseHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":"case-1"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	http.HandlerFunc(c.DeleteCaseHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
