package observability

import "creatorpay/core/events"

// MetricsEmitter folds committed settlement events into the Prometheus
// registry.
type MetricsEmitter struct {
	metrics *SettlementMetrics
}

// NewMetricsEmitter returns an emitter bound to the settlement registry.
func NewMetricsEmitter() *MetricsEmitter {
	return &MetricsEmitter{metrics: Settlement()}
}

// Emit implements events.Emitter.
func (e *MetricsEmitter) Emit(evt events.Event) {
	if e == nil || evt == nil {
		return
	}
	m := e.metrics
	m.events.WithLabelValues(evt.EventType()).Inc()
	switch v := evt.(type) {
	case events.TipSent:
		m.RecordSettlement("tip", v.Amount, v.Fee, v.Net)
	case events.SubscriptionCreated:
		m.RecordSettlement("subscription", v.AmountPerMonth, v.Fee, v.Net)
		m.active.Inc()
	case events.SubscriptionProcessed:
		m.RecordSettlement("subscription", v.Amount, v.Fee, v.Net)
	case events.SubscriptionCancelled:
		m.active.Dec()
	case events.Withdrawal:
		m.withdraw.Add(float64(v.Amount))
	}
}
