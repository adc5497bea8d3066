package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id assigned to each request
const RequestIDHeader = "X-Request-ID"

const slowRequest = time.Second

// Middleware times each request and records it on the collector
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/api/v1/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestID := uuid.New().String()
		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		mc.Record(RequestTrace{
			RequestID: requestID,
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    wrapped.statusCode,
			StartTime: start,
			Duration:  duration,
		})

		if duration > slowRequest {
			zap.S().Warnw("slow request",
				"requestId", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"duration", duration,
				"status", wrapped.statusCode)
		}
	})
}

// responseWriter captures the status code written by a handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
