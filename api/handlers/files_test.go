package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/case-diary-api/api/handlers"
	"github.com/linesmerrill/case-diary-api/storage"
)

func signedToken(t *testing.T, svc *storage.Service, name string, ttl time.Duration) string {
	link, err := svc.SignedURL(context.Background(), name, ttl)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestFiles_DownloadHandler(t *testing.T) {
	store := newMemStore()
	store.objects["case-1/order.pdf"] = []byte("%PDF-1.4")
	store.types["case-1/order.pdf"] = "application/pdf"
	svc := &storage.Service{Store: store, Signer: storage.NewSigner("secret", "http://diary.test")}
	f := handlers.Files{Storage: svc}

	token := signedToken(t, svc, "case-1/order.pdf", time.Hour)
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.DownloadHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/files?token="+url.QueryEscape(token), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="order.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", rr.Body.String())
}

func TestFiles_DownloadHandlerRejectsBadTokens(t *testing.T) {
	store := newMemStore()
	store.objects["case-1/order.pdf"] = []byte("%PDF-1.4")
	svc := &storage.Service{Store: store, Signer: storage.NewSigner("secret", "")}
	f := handlers.Files{Storage: svc}

	other := &storage.Service{Store: store, Signer: storage.NewSigner("another secret", "")}
	expired := &storage.Service{Store: store, Signer: storage.NewSigner("secret", "").WithNow(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", signedToken(t, other, "case-1/order.pdf", time.Hour)},
		{"expired", signedToken(t, expired, "case-1/order.pdf", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			http.HandlerFunc(f.DownloadHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/files?token="+url.QueryEscape(tt.token), nil))
			assert.Equal(t, http.StatusForbidden, rr.Code)
		})
	}
}

func TestFiles_DownloadHandlerMissingObject(t *testing.T) {
	store := newMemStore()
	signer := storage.NewSigner("secret", "")
	f := handlers.Files{Storage: &storage.Service{Store: store, Signer: signer}}

	token, err := signer.Token("case-1/removed.pdf", time.Hour)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	http.HandlerFunc(f.DownloadHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/files?token="+url.QueryEscape(token), nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFiles_DownloadHandlerWithoutStorage(t *testing.T) {
	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Files{}.DownloadHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/files?token=x", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
