package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"creatorpay/core/events"
)

func TestMetricsEmitterCountsVolume(t *testing.T) {
	emitter := NewMetricsEmitter()
	m := Settlement()
	beforeGross := testutil.ToFloat64(m.gross.WithLabelValues("tip"))
	beforeFee := testutil.ToFloat64(m.fees.WithLabelValues("tip"))
	beforeEvents := testutil.ToFloat64(m.events.WithLabelValues(events.TypeTipSent))

	emitter.Emit(events.TipSent{Amount: 1_000, Fee: 20, Net: 980})

	if got := testutil.ToFloat64(m.gross.WithLabelValues("tip")) - beforeGross; got != 1_000 {
		t.Fatalf("gross delta %v", got)
	}
	if got := testutil.ToFloat64(m.fees.WithLabelValues("tip")) - beforeFee; got != 20 {
		t.Fatalf("fee delta %v", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues(events.TypeTipSent)) - beforeEvents; got != 1 {
		t.Fatalf("event delta %v", got)
	}
}

func TestSubscriptionGaugeTracksLifecycle(t *testing.T) {
	emitter := NewMetricsEmitter()
	before := testutil.ToFloat64(Settlement().active)
	emitter.Emit(events.SubscriptionCreated{AmountPerMonth: 10})
	emitter.Emit(events.SubscriptionCreated{AmountPerMonth: 10})
	emitter.Emit(events.SubscriptionCancelled{})
	if got := testutil.ToFloat64(Settlement().active) - before; got != 1 {
		t.Fatalf("gauge delta %v", got)
	}
}

func TestObserveRequestLabels(t *testing.T) {
	m := Settlement()
	before := testutil.ToFloat64(m.requests.WithLabelValues("tip", "PaymentNotDue"))
	m.ObserveRequest("tip", "PaymentNotDue", time.Millisecond)
	if got := testutil.ToFloat64(m.requests.WithLabelValues("tip", "PaymentNotDue")) - before; got != 1 {
		t.Fatalf("request delta %v", got)
	}
	ModuleMetrics().Observe("payments_getVault", -32004, time.Millisecond)
	if got := testutil.ToFloat64(ModuleMetrics().errors.WithLabelValues("payments_getVault", "-32004")); got < 1 {
		t.Fatalf("error counter not incremented")
	}
}
