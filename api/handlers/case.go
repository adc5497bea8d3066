package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
)

// Case exported for testing purposes
type Case struct {
	Repo  *cases.Repository
	Clock *diary.Clock
}

// caseRequest is the body of a create or update. Dates are yyyy-mm-dd or RFC 3339.
type caseRequest struct {
	PreviousDate string            `json:"previousDate"`
	NextDate     string            `json:"nextDate"`
	Status       models.CaseStatus `json:"status"`
	CaseDetails  string            `json:"caseDetails"`
	TeamID       *string           `json:"teamId"`
}

func (c Case) decodeInput(r *http.Request) (models.CaseInput, error) {
	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.CaseInput{}, fmt.Errorf("%w: %v", cases.ErrInvalid, err)
	}
	prev, err := parseDate(req.PreviousDate, c.Clock.Location())
	if err != nil {
		return models.CaseInput{}, err
	}
	next, err := parseDate(req.NextDate, c.Clock.Location())
	if err != nil {
		return models.CaseInput{}, err
	}
	return models.CaseInput{
		PreviousDate: prev,
		NextDate:     next,
		Status:       req.Status,
		CaseDetails:  req.CaseDetails,
		TeamID:       req.TeamID,
	}, nil
}

func (c Case) filtered(r *http.Request) ([]models.CaseEntry, error) {
	q := r.URL.Query()
	f, err := diary.ParseFilter(q.Get("q"), q.Get("status"), q.Get("date"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := c.Repo.List(ctx, api.UserID(r.Context()))
	if err != nil {
		return nil, err
	}
	return diary.Compose(list, f, c.Clock.Now()), nil
}

// CasesHandler returns the caller's cases narrowed by the q, status and date filters
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.filtered(r)
	if err != nil {
		caseError(w, r, "failed to get cases", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ExportCasesHandler returns the filtered cases as a CSV download
func (c Case) ExportCasesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.filtered(r)
	if err != nil {
		caseError(w, r, "failed to export cases", err)
		return
	}

	var buf bytes.Buffer
	if err = diary.WriteCSV(&buf, list, c.Clock.Location()); err != nil {
		config.ErrorStatus("failed to write csv", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, diary.ExportFilename(c.Clock.Now(), c.Clock.Location())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// CasesOnDayHandler returns the cases with either date on the day in the path
func (c Case) CasesOnDayHandler(w http.ResponseWriter, r *http.Request) {
	day, err := diary.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		config.ErrorStatus("failed to parse date", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := c.Repo.List(ctx, api.UserID(r.Context()))
	if err != nil {
		caseError(w, r, "failed to get cases", err)
		return
	}
	respondJSON(w, http.StatusOK, diary.CasesOnDay(list, day, c.Clock.Location()))
}

// CaseByIDHandler returns one case
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	entry, err := c.Repo.Get(ctx, api.UserID(r.Context()), mux.Vars(r)["case_id"])
	if err != nil {
		caseError(w, r, "failed to get case by ID", err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// CreateCaseHandler stores a new case for the caller
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	in, err := c.decodeInput(r)
	if err != nil {
		caseError(w, r, "failed to decode request body", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	entry, err := c.Repo.Create(ctx, api.UserID(r.Context()), in)
	if err != nil {
		caseError(w, r, "failed to create case", err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// UpdateCaseHandler replaces every editable field of a case
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	in, err := c.decodeInput(r)
	if err != nil {
		caseError(w, r, "failed to decode request body", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	entry, err := c.Repo.Update(ctx, api.UserID(r.Context()), mux.Vars(r)["case_id"], in)
	if err != nil {
		caseError(w, r, "failed to update case", err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// DeleteCaseHandler removes a case
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id := mux.Vars(r)["case_id"]
	if err := c.Repo.Delete(ctx, api.UserID(r.Context()), id); err != nil {
		caseError(w, r, "failed to delete case", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
