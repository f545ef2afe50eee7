// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_gateway_requests_total",
			Help: "Total number of backend requests issued by the gateway",
		},
		[]string{"method", "route", "outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_gateway_request_duration_seconds",
			Help:    "Duration of backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_session_store_operations_total",
			Help: "Total number of session store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	SessionStoresActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_session_stores_active",
			Help: "Number of session stores currently held in memory",
		},
	)
)

// Gateway request outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)
