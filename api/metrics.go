package api

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"
)

// RequestTrace is the timing of one served request
type RequestTrace struct {
	RequestID string        `json:"requestId"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// RouteMetrics aggregates the traces of one method and normalized path
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	P50Time     time.Duration `json:"p50Time"`
	P95Time     time.Duration `json:"p95Time"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsSummary is the totals across every route
type MetricsSummary struct {
	TotalRequests int64     `json:"totalRequests"`
	TotalErrors   int64     `json:"totalErrors"`
	ErrorRate     float64   `json:"errorRate"`
	RouteCount    int       `json:"routeCount"`
	TraceCount    int       `json:"traceCount"`
	Since         time.Time `json:"since"`
}

// MetricsCollector keeps recent request traces and per-route aggregates.
// Record never blocks; when the queue is full the trace is dropped.
type MetricsCollector struct {
	mu        sync.RWMutex
	traces    []RequestTrace
	maxTraces int
	routes    map[string]*RouteMetrics
	since     time.Time

	totalRequests int64
	totalErrors   int64

	queue chan RequestTrace
}

// NewMetricsCollector returns a collector retaining at most maxTraces traces.
// Call Run to start consuming recorded traces.
func NewMetricsCollector(maxTraces int) *MetricsCollector {
	if maxTraces <= 0 {
		maxTraces = 1000
	}
	return &MetricsCollector{
		traces:    make([]RequestTrace, 0, maxTraces),
		maxTraces: maxTraces,
		routes:    make(map[string]*RouteMetrics),
		since:     time.Now(),
		queue:     make(chan RequestTrace, 1000),
	}
}

// Run processes queued traces until ctx is done
func (mc *MetricsCollector) Run(ctx context.Context) {
	for {
		select {
		case trace := <-mc.queue:
			mc.process(trace)
		case <-ctx.Done():
			return
		}
	}
}

// Record queues trace for processing
func (mc *MetricsCollector) Record(trace RequestTrace) {
	select {
	case mc.queue <- trace:
	default:
	}
}

func (mc *MetricsCollector) process(trace RequestTrace) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.traces) >= mc.maxTraces {
		mc.traces = mc.traces[1:]
	}
	mc.traces = append(mc.traces, trace)

	path := normalizeRoutePath(trace.Path)
	key := trace.Method + " " + path
	m, ok := mc.routes[key]
	if !ok {
		m = &RouteMetrics{Method: trace.Method, Path: path, MinTime: trace.Duration}
		mc.routes[key] = m
	}

	m.Count++
	m.TotalTime += trace.Duration
	m.AvgTime = m.TotalTime / time.Duration(m.Count)
	m.LastRequest = trace.StartTime
	if trace.Duration < m.MinTime {
		m.MinTime = trace.Duration
	}
	if trace.Duration > m.MaxTime {
		m.MaxTime = trace.Duration
	}

	mc.totalRequests++
	if trace.Status >= 400 {
		m.ErrorCount++
		mc.totalErrors++
	}

	mc.percentiles(key, m)
}

// percentiles recomputes p50 and p95 from the retained traces of a route.
// The caller holds the write lock.
func (mc *MetricsCollector) percentiles(key string, m *RouteMetrics) {
	var durations []time.Duration
	for _, t := range mc.traces {
		if t.Method+" "+normalizeRoutePath(t.Path) == key {
			durations = append(durations, t.Duration)
		}
	}
	if len(durations) == 0 {
		return
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	m.P50Time = durations[len(durations)*50/100]
	m.P95Time = durations[len(durations)*95/100]
}

// Routes returns a copy of the per-route aggregates, slowest average first
func (mc *MetricsCollector) Routes() []RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	routes := make([]RouteMetrics, 0, len(mc.routes))
	for _, m := range mc.routes {
		routes = append(routes, *m)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].AvgTime == routes[j].AvgTime {
			return routes[i].Method+routes[i].Path < routes[j].Method+routes[j].Path
		}
		return routes[i].AvgTime > routes[j].AvgTime
	})
	return routes
}

// Summary returns the totals since the collector was created
func (mc *MetricsCollector) Summary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}
	return MetricsSummary{
		TotalRequests: mc.totalRequests,
		TotalErrors:   mc.totalErrors,
		ErrorRate:     errorRate,
		RouteCount:    len(mc.routes),
		TraceCount:    len(mc.traces),
		Since:         mc.since,
	}
}

var (
	uuidSegment = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	daySegment  = regexp.MustCompile(`/\d{4}-\d{2}-\d{2}(/|$)`)
	yearMonth   = regexp.MustCompile(`/calendar/\d{4}/\d{1,2}$`)
)

// normalizeRoutePath replaces ids and dates in a path with placeholders so
// requests to the same route group together.
//   - /api/v1/cases/0b7e4a8e-3f7c-4c55-9a8f-2c6f0a0b9d11/history -> /api/v1/cases/{id}/history
//   - /api/v1/cases/day/2024-06-01 -> /api/v1/cases/day/{date}
func normalizeRoutePath(path string) string {
	path = uuidSegment.ReplaceAllString(path, "/{id}$1")
	path = daySegment.ReplaceAllString(path, "/{date}$1")
	path = yearMonth.ReplaceAllString(path, "/calendar/{year}/{month}")
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
