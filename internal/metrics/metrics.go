package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentor_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ActiveStreams tracks currently streaming conversations
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mentor_active_streams",
			Help: "Number of conversation streams in flight",
		},
	)

	// ConversationDuration tracks how long a full conversation turn takes
	ConversationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentor_conversation_duration_seconds",
			Help:    "Conversation turn duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	// ToolCalls tracks action handler invocations
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_tool_calls_total",
			Help: "Total number of tool calls dispatched",
		},
		[]string{"tool", "status"},
	)

	// ModelRequests counts upstream model API calls
	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_model_requests_total",
			Help: "Total number of model completion requests",
		},
		[]string{"model", "status"},
	)

	// EventsEmitted counts stream events sent to clients
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_events_emitted_total",
			Help: "Total number of stream events emitted",
		},
		[]string{"type"},
	)

	// GoalsActive tracks the number of active goals
	GoalsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mentor_goals_active",
			Help: "Number of goals with active status",
		},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher for streaming support
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware creates an HTTP middleware that records metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// normalizePath collapses IDs out of URL paths to avoid high cardinality
func normalizePath(path string) string {
	switch path {
	case "/health", "/ready", "/metrics", "/chat/message", "/chat/sessions":
		return path
	}
	for _, prefix := range []string{"/chat/sessions/", "/chat/history/", "/goals", "/calendar", "/notifications", "/profile", "/reminders"} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimSuffix(prefix, "/")
		}
	}
	return "other"
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStreamStart increments the active stream gauge
func RecordStreamStart() {
	ActiveStreams.Inc()
}

// RecordStreamEnd decrements the active stream gauge and records duration
func RecordStreamEnd(status string, durationSeconds float64) {
	ActiveStreams.Dec()
	ConversationDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordToolCall records an action handler invocation
func RecordToolCall(tool, status string) {
	ToolCalls.WithLabelValues(tool, status).Inc()
}

// RecordModelRequest records an upstream model call
func RecordModelRequest(model, status string) {
	ModelRequests.WithLabelValues(model, status).Inc()
}

// RecordEvent records a stream event emission
func RecordEvent(eventType string) {
	EventsEmitted.WithLabelValues(eventType).Inc()
}

// SetGoalsActive sets the active goal count
func SetGoalsActive(count float64) {
	GoalsActive.Set(count)
}
