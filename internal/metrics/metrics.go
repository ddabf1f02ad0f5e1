package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencydesk_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agencydesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencydesk_ledger_decisions_total",
			Help: "Page-view decisions made by the usage ledger.",
		},
		[]string{"outcome"},
	)

	AuditEventsPersistedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencydesk_audit_events_persisted_total",
			Help: "Usage audit events consumed from the event stream.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LedgerDecisionsTotal,
		AuditEventsPersistedTotal,
	)
}
