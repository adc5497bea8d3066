package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/diary"
)

// maxHistoryForm is the largest history form kept in memory; larger files spill to disk
const maxHistoryForm = 32 << 20

// History exported for testing purposes
type History struct {
	Service *cases.HistoryService
	Clock   *diary.Clock
}

// HistoryHandler returns the merged history feed of a case, newest first
func (h History) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := diary.ParseHistoryFilter(q.Get("start"), q.Get("end"), q.Get("action"), q.Get("keywords"))
	if err != nil {
		config.ErrorStatus("failed to parse history filter", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	items, err := h.Service.List(ctx, api.UserID(r.Context()), mux.Vars(r)["case_id"], f, h.Clock.Location())
	if err != nil {
		caseError(w, r, "failed to get case history", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// AddHistoryHandler records a manual history entry from a multipart form
func (h History) AddHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxHistoryForm); err != nil && err != http.ErrNotMultipart {
		config.ErrorStatus("failed to parse form", http.StatusBadRequest, w, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	eventDate, err := parseDate(r.FormValue("eventDate"), h.Clock.Location())
	if err != nil {
		caseError(w, r, "failed to parse event date", err)
		return
	}

	in := cases.HistoryEntryInput{
		EventDate:   eventDate,
		Action:      r.FormValue("action"),
		StageChange: r.FormValue("stageChange"),
		Notes:       r.FormValue("notes"),
		Links:       r.Form["links"],
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			upload, closeFile, err := openUpload(fh)
			if err != nil {
				config.ErrorStatus("failed to read uploaded file", http.StatusBadRequest, w, err)
				return
			}
			defer closeFile()
			in.Files = append(in.Files, upload)
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	row, err := h.Service.Add(ctx, api.UserID(r.Context()), mux.Vars(r)["case_id"], in)
	if err != nil {
		caseError(w, r, "failed to add history entry", err)
		return
	}
	zap.S().Infow("history entry added",
		"caseId", row.CaseID,
		"documents", len(row.DocumentFiles),
		"links", len(row.DocumentLinks))
	respondJSON(w, http.StatusCreated, row)
}

func openUpload(fh *multipart.FileHeader) (cases.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return cases.Upload{}, nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	contentType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return cases.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        f,
	}, func() { f.Close() }, nil
}
