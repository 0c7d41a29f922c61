package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Access control
	accessDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Total number of access decisions by outcome",
		},
		[]string{"collection", "operation", "result"},
	)

	// Document API
	documentWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_writes_total",
			Help: "Total number of committed document writes",
		},
		[]string{"collection", "operation"},
	)

	// OTP mail
	otpEmailsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_emails_sent_total",
			Help: "Total number of OTP emails accepted by the relay",
		},
	)

	otpEmailsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_emails_failed_total",
			Help: "Total number of OTP requests that did not produce an email",
		},
		[]string{"reason"}, // invalid_argument, rate_limited, relay
	)

	otpSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "otp_send_duration_seconds",
			Help:    "OTP relay send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// Audit events
	auditPublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_publish_failures_total",
			Help: "Total number of audit events that could not be published",
		},
		[]string{"routing_key"},
	)
)

func RecordAccessDecision(collection, operation string, allowed bool) {
	result := "deny"
	if allowed {
		result = "allow"
	}
	accessDecisionsTotal.WithLabelValues(collection, operation, result).Inc()
}

func RecordDocumentWrite(collection, operation string) {
	documentWritesTotal.WithLabelValues(collection, operation).Inc()
}

func RecordOTPSent(duration time.Duration) {
	otpEmailsSentTotal.Inc()
	otpSendDuration.Observe(duration.Seconds())
}

func RecordOTPFailed(reason string) {
	otpEmailsFailedTotal.WithLabelValues(reason).Inc()
}

func RecordAuditPublishFailure(routingKey string) {
	auditPublishFailuresTotal.WithLabelValues(routingKey).Inc()
}

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
