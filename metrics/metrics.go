package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds every counter the service exports.
type PaymentMetrics struct {
	TopupsInitiatedTotal *prometheus.CounterVec
	TopupsSettledTotal   *prometheus.CounterVec // status: succeeded|failed
	TopupsExpiredTotal   prometheus.Counter

	WebhookEventsTotal    *prometheus.CounterVec // gateway, outcome: processed|duplicate|rejected
	RecurringChargesTotal *prometheus.CounterVec // via, status
	SubscriptionsByStatus *prometheus.GaugeVec
	GracePeriodsGranted   prometheus.Counter

	GatewayRequestDuration *prometheus.HistogramVec
	JobsProcessedTotal     *prometheus.CounterVec // type, outcome
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		TopupsInitiatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_topups_initiated_total",
			Help: "Top-up transactions created",
		}, []string{"gateway"}),
		TopupsSettledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_topups_settled_total",
			Help: "Top-up transactions settled, by final status",
		}, []string{"status"}),
		TopupsExpiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aurum_topups_expired_total",
			Help: "Pending top-ups failed by the reconciliation timeout",
		}),
		WebhookEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_webhook_events_total",
			Help: "Webhook deliveries, by gateway and outcome",
		}, []string{"gateway", "outcome"}),
		RecurringChargesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_recurring_charges_total",
			Help: "Recurring charge attempts, by instrument and status",
		}, []string{"via", "status"}),
		SubscriptionsByStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aurum_subscriptions",
			Help: "Subscriptions by status",
		}, []string{"status"}),
		GracePeriodsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aurum_grace_periods_granted_total",
			Help: "Introductory grace periods granted",
		}),
		GatewayRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aurum_gateway_request_duration_seconds",
			Help:    "Latency of payment gateway calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"gateway", "operation"}),
		JobsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_jobs_processed_total",
			Help: "Background jobs processed, by type and outcome",
		}, []string{"type", "outcome"}),
	}
}
