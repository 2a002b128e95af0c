package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	settlementOnce     sync.Once
	settlementRegistry *SettlementMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record
// JSON-RPC method activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and error code.",
			}, []string{"method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "creatorpay",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "rpc",
				Name:      "throttles_total",
				Help:      "Count of requests rejected by throttling or authentication policies.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of one JSON-RPC call. code is the JSON-RPC
// error code, or zero on success.
func (m *moduleMetrics) Observe(method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if code != 0 {
		outcome = "error"
		m.errors.WithLabelValues(method, fmt.Sprintf("%d", code)).Inc()
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit" or "unauthenticated".
func (m *moduleMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}

// SettlementMetrics tracks applied requests and settled value.
type SettlementMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
	gross    *prometheus.CounterVec
	fees     *prometheus.CounterVec
	net      *prometheus.CounterVec
	withdraw prometheus.Counter
	active   prometheus.Gauge
}

// Settlement returns the singleton settlement metrics registry.
func Settlement() *SettlementMetrics {
	settlementOnce.Do(func() {
		settlementRegistry = &SettlementMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "requests_total",
				Help:      "Settlement requests segmented by type and outcome (error kind on failure).",
			}, []string{"type", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "apply_duration_seconds",
				Help:      "Time spent verifying and applying a settlement request.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"type"}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "events_total",
				Help:      "Committed settlement events segmented by event type.",
			}, []string{"event"}),
			gross: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "gross_volume_total",
				Help:      "Gross amount paid by tippers and subscribers.",
			}, []string{"flow"}),
			fees: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "fee_volume_total",
				Help:      "Platform fees collected.",
			}, []string{"flow"}),
			net: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "net_volume_total",
				Help:      "Net amount credited to creator vaults.",
			}, []string{"flow"}),
			withdraw: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "withdrawn_total",
				Help:      "Amount creators marked as withdrawn.",
			}),
			active: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "creatorpay",
				Subsystem: "settlement",
				Name:      "subscription_delta",
				Help:      "Subscriptions created minus subscriptions cancelled since start.",
			}),
		}
		prometheus.MustRegister(
			settlementRegistry.requests,
			settlementRegistry.latency,
			settlementRegistry.events,
			settlementRegistry.gross,
			settlementRegistry.fees,
			settlementRegistry.net,
			settlementRegistry.withdraw,
			settlementRegistry.active,
		)
	})
	return settlementRegistry
}

// ObserveRequest records one processed request.
func (m *SettlementMetrics) ObserveRequest(typ, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if typ == "" {
		typ = "unknown"
	}
	if outcome == "" {
		outcome = "error"
	}
	m.requests.WithLabelValues(typ, outcome).Inc()
	m.latency.WithLabelValues(typ).Observe(duration.Seconds())
}

// RecordSettlement adds one money movement to the volume counters.
func (m *SettlementMetrics) RecordSettlement(flow string, gross, fee, net uint64) {
	if m == nil {
		return
	}
	m.gross.WithLabelValues(flow).Add(float64(gross))
	m.fees.WithLabelValues(flow).Add(float64(fee))
	m.net.WithLabelValues(flow).Add(float64(net))
}
