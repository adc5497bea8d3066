package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/storage"
)

// Files exported for testing purposes
type Files struct {
	Storage *storage.Service
}

// DownloadHandler streams the document named by a signed token
func (f Files) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if f.Storage == nil {
		config.ErrorStatus("document storage is not configured", http.StatusServiceUnavailable, w, errors.New("no storage"))
		return
	}

	obj, err := f.Storage.Resolve(r.Context(), r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, storage.ErrInvalidToken):
		config.ErrorStatus("invalid or expired link", http.StatusForbidden, w, err)
		return
	case errors.Is(err, storage.ErrObjectNotFound):
		config.ErrorStatus("document not found", http.StatusNotFound, w, err)
		return
	case err != nil:
		config.ErrorStatus("failed to open document", http.StatusInternalServerError, w, err)
		return
	}
	defer obj.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(obj.Name)+`"`)
	if obj.Length > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Length, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err = io.Copy(w, obj); err != nil {
		zap.S().Warnw("document download interrupted", "name", obj.Name, "error", err)
	}
}
