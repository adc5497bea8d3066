// Package docs Case Diary API.
//
// Documentation of the Case Diary API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/case-diary-api/api/handlers"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/cases cases listCases
// Lists the caller's cases, oldest first.
// responses:
//   200: casesResponse
//   400: errorResponse

// swagger:parameters listCases exportCases
type caseFilterParams struct {
	// Text the case details must contain, ignoring case
	// in: query
	Q string `json:"q"`
	// A case status, or all
	// in: query
	Status string `json:"status"`
	// all, upcoming or past, judged by the next date
	// in: query
	Date string `json:"date"`
}

// A list of cases
// swagger:response casesResponse
type casesResponseWrapper struct {
	// in:body
	Body []models.CaseEntry
}

// swagger:route GET /api/v1/cases/export cases exportCases
// Downloads the filtered cases as CSV.
// produces:
// - text/csv
// responses:
//   200: description: the CSV document

// swagger:route POST /api/v1/cases cases createCase
// Creates a case. Dates are yyyy-mm-dd or RFC 3339.
// responses:
//   201: caseResponse
//   400: errorResponse

// swagger:route PUT /api/v1/cases/{case_id} cases updateCase
// Replaces every editable field of a case. Changed dates and status are recorded in its history.
// responses:
//   200: caseResponse
//   400: errorResponse
//   404: errorResponse

// swagger:route GET /api/v1/cases/{case_id} cases caseByID
// Gets a single case by ID.
// responses:
//   200: caseResponse
//   404: errorResponse

// A single case
// swagger:response caseResponse
type caseResponseWrapper struct {
	// in:body
	Body models.CaseEntry
}

// swagger:route GET /api/v1/cases/{case_id}/history history caseHistory
// Lists the merged history of a case, newest first.
// responses:
//   200: historyResponse
//   404: errorResponse

// swagger:parameters caseHistory
type historyFilterParams struct {
	// First day, yyyy-mm-dd
	// in: query
	Start string `json:"start"`
	// Last day, yyyy-mm-dd
	// in: query
	End string `json:"end"`
	// Text the action must contain
	// in: query
	Action string `json:"action"`
	// Text the notes must contain
	// in: query
	Keywords string `json:"keywords"`
}

// The history feed of a case
// swagger:response historyResponse
type historyResponseWrapper struct {
	// in:body
	Body []models.HistoryItem
}

// swagger:route GET /api/v1/dashboard dashboard dashboard
// Counts the caller's cases and lists today's and upcoming hearings.
// responses:
//   200: dashboardResponse

// swagger:response dashboardResponse
type dashboardResponseWrapper struct {
	// in:body
	Body handlers.DashboardResponse
}

// swagger:route GET /api/v1/calendar/{year}/{month} dashboard calendar
// Lists the days of a month that have hearings.
// responses:
//   200: calendarResponse

// swagger:response calendarResponse
type calendarResponseWrapper struct {
	// in:body
	Body []diary.CalendarDay
}

// swagger:route GET /api/v1/teams teams listTeams
// Lists every team by name.
// responses:
//   200: teamsResponse

// swagger:response teamsResponse
type teamsResponseWrapper struct {
	// in:body
	Body []models.Team
}

// swagger:route GET /api/v1/metrics metrics metrics
// Request totals and per-route timings.
// responses:
//   200: metricsResponse

// swagger:response metricsResponse
type metricsResponseWrapper struct {
	// in:body
	Body handlers.MetricsResponse
}

// Describes a failed request
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
