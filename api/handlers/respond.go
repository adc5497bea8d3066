package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/diary"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// caseError maps a repository error onto a response. A request without a session is
// answered with 204 and no body.
func caseError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, cases.ErrNoSession):
		zap.S().Warnw("no authenticated user, ignoring request",
			"method", r.Method,
			"path", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, cases.ErrInvalid), errors.Is(err, diary.ErrInvalidFilter):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.Is(err, cases.ErrNotFound):
		config.ErrorStatus(message, http.StatusNotFound, w, err)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}

// parseDate reads a calendar date or a full timestamp. Bare dates are midnight in loc.
func parseDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := diary.ParseDay(s); err == nil {
		t := d.Start(loc)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", cases.ErrInvalid, s)
	}
	return &t, nil
}
