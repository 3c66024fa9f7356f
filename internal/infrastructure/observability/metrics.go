// Package observability registers the Prometheus metrics exposed on
// /metrics. Counters are incremented by the services; the HTTP histogram is
// driven by middleware.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventpos",
		Name:      "orders_created_total",
		Help:      "Orders created, by source.",
	}, []string{"source"})

	OrdersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventpos",
		Name:      "orders_completed_total",
		Help:      "Orders that reached the completed status.",
	})

	PaymentsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventpos",
		Name:      "payments_captured_total",
		Help:      "Captured payments, by method.",
	}, []string{"method"})

	StockReservationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventpos",
		Name:      "stock_reservation_failures_total",
		Help:      "Stock reservations rejected for insufficient stock.",
	})

	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventpos",
		Name:      "order_version_conflicts_total",
		Help:      "Order mutations rejected by the optimistic version guard.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventpos",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
