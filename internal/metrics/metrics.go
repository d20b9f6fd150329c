package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cabletv_http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cabletv_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	BillsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabletv_bills_generated_total",
		Help: "Monthly bills persisted by the bill generator",
	})

	PaymentsCollectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cabletv_payments_collected_total",
		Help: "Payments recorded, by payment method",
	}, []string{"method"})

	ReconciliationRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabletv_reconciliation_writes_total",
		Help: "Outstanding-balance writes performed by the reconciler",
	})

	AutoBillingRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabletv_autobilling_runs_total",
		Help: "Auto-billing runs that actually generated bills",
	})
)
