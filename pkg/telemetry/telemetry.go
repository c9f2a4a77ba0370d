package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tinykind_http_request_duration_seconds",
		Help:    "HTTP request latency by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	MessagesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinykind_messages_created_total",
		Help: "Messages successfully created.",
	})

	ReactionsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tinykind_reactions_upserted_total",
		Help: "Reaction upserts by whether the emoji changed.",
	}, []string{"changed"})

	BackupSnapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tinykind_backup_snapshots_total",
		Help: "Backup snapshot attempts by result.",
	}, []string{"result"})

	NotificationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tinykind_notifications_total",
		Help: "Reaction notification attempts by result.",
	}, []string{"result"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request latency and status for every handler.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
