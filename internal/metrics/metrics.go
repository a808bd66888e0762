package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eatsplorer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Ratings and the ave aggregate
	RatingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_rating_operations_total",
			Help: "Rating operations by kind and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, not_found, error
	)

	OrphanRatings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatsplorer_orphan_ratings_total",
			Help: "Ratings stored without a matching establishment",
		},
	)

	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_reconcile_runs_total",
			Help: "Aggregate reconcile runs",
		},
		[]string{"outcome"},
	)

	ReconcileCorrections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatsplorer_reconcile_corrections_total",
			Help: "Establishments whose ave was corrected by reconcile",
		},
	)

	// Email
	EmailsQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_emails_queued_total",
			Help: "Emails accepted by the outbound queue",
		},
		[]string{"kind"},
	)

	EmailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_email_deliveries_total",
			Help: "Email delivery attempts by outcome",
		},
		[]string{"outcome"}, // sent, retry, failed
	)

	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_otp_issued_total",
			Help: "One time codes stored, by purpose",
		},
		[]string{"purpose"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// Storage
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatsplorer_uploads_total",
			Help: "Stored uploads by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eatsplorer_websocket_connections",
			Help: "Open rating feed connections",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eatsplorer_websocket_messages_dropped_total",
			Help: "Feed messages dropped for slow clients",
		},
	)
)

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordRatingOperation(operation, outcome string) {
	RatingOperations.WithLabelValues(operation, outcome).Inc()
}

func RecordReconcile(corrected int, err error) {
	if err != nil {
		ReconcileRuns.WithLabelValues("error").Inc()
		return
	}
	ReconcileRuns.WithLabelValues("ok").Inc()
	ReconcileCorrections.Add(float64(corrected))
}

func RecordEmailDelivery(outcome string) {
	EmailDeliveries.WithLabelValues(outcome).Inc()
}

func RecordUpload(backend string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UploadsTotal.WithLabelValues(backend, outcome).Inc()
}
