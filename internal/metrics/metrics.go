package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeforce_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradeforce_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TransactionsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeforce_transactions_submitted_total",
			Help: "Total number of wallet transactions submitted",
		},
		[]string{"type", "method"},
	)

	TransactionDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeforce_transaction_decisions_total",
			Help: "Total number of admin decisions on wallet transactions",
		},
		[]string{"type", "status"},
	)

	TransactionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradeforce_transaction_conflicts_total",
			Help: "Total number of transaction decisions lost to a concurrent decision",
		},
	)

	InsufficientFundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradeforce_insufficient_funds_total",
			Help: "Total number of withdrawal approvals refused for insufficient funds",
		},
	)

	VerificationsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradeforce_verifications_submitted_total",
			Help: "Total number of identity verification submissions",
		},
	)

	VerificationReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeforce_verification_reviews_total",
			Help: "Total number of identity verification reviews",
		},
		[]string{"decision"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeforce_notifications_sent_total",
			Help: "Total number of outbound notifications",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradeforce_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTransactionSubmitted(txType, method string) {
	TransactionsSubmittedTotal.WithLabelValues(txType, method).Inc()
}

func RecordTransactionDecision(txType, status string) {
	TransactionDecisionsTotal.WithLabelValues(txType, status).Inc()
}

func RecordTransactionConflict() {
	TransactionConflictsTotal.Inc()
}

func RecordInsufficientFunds() {
	InsufficientFundsTotal.Inc()
}

func RecordVerificationSubmitted() {
	VerificationsSubmittedTotal.Inc()
}

func RecordVerificationReview(decision string) {
	VerificationReviewsTotal.WithLabelValues(decision).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsSentTotal.WithLabelValues(notificationType, status).Inc()
}
