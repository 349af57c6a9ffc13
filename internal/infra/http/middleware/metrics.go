package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leasesGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_leases_granted_total",
			Help: "Total number of contacts leased to actors",
		},
		[]string{"reason", "method"},
	)

	outcomesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_outcomes_recorded_total",
			Help: "Total number of contact outcomes recorded",
		},
		[]string{"action", "result"},
	)

	eventsReplayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_events_replayed_total",
			Help: "Total number of broadcast events replayed from other campaigns",
		},
		[]string{"action"},
	)

	messagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_messages_dropped_total",
			Help: "Total number of broadcast messages dropped by the consumer",
		},
		[]string{"cause"},
	)

	messagesRequeued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_messages_requeued_total",
			Help: "Total number of broadcast messages requeued after a transient failure",
		},
		[]string{"cause"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordLeaseGranted(reason, method string) {
	leasesGranted.WithLabelValues(reason, method).Inc()
}

func RecordOutcome(action, result string) {
	outcomesRecorded.WithLabelValues(action, result).Inc()
}

func RecordEventReplayed(action string) {
	eventsReplayed.WithLabelValues(action).Inc()
}

func RecordMessageDropped(cause string) {
	messagesDropped.WithLabelValues(cause).Inc()
}

func RecordMessageRequeued(cause string) {
	messagesRequeued.WithLabelValues(cause).Inc()
}
