package handlers

import (
	"net/http"

	"github.com/linesmerrill/case-diary-api/api"
)

// Metrics exported for testing purposes
type Metrics struct {
	Collector *api.MetricsCollector
}

// MetricsResponse is the body of the metrics endpoint
type MetricsResponse struct {
	Summary api.MetricsSummary `json:"summary"`
	Routes  []api.RouteMetrics `json:"routes"`
}

// MetricsHandler returns the request totals and per-route timings
func (m Metrics) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MetricsResponse{
		Summary: m.Collector.Summary(),
		Routes:  m.Collector.Routes(),
	})
}
