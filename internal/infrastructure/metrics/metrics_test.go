package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.PaymentsProcessed == nil || m.HandlerFailures == nil || m.EventsPublished == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.PaymentProcessed("completed", decimal.NewFromInt(500))
	m.ObservePayment(10 * time.Millisecond)
	m.LegacyConverted(true)
	m.HandlerFailed("notification", "best_effort")
	m.ObserveHandler("settlement", time.Millisecond)
	m.EventPublished("payment.requested", false)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.PaymentProcessed("failed", decimal.NewFromInt(1))
	m.PaymentProcessed("failed", decimal.NewFromInt(1))
	m.HandlerFailed("audit", "best_effort")

	if got := testutil.ToFloat64(m.PaymentsProcessed.WithLabelValues("failed")); got != 2 {
		t.Fatalf("expected 2 failed payments, got %v", got)
	}
	if got := testutil.ToFloat64(m.HandlerFailures.WithLabelValues("audit", "best_effort")); got != 1 {
		t.Fatalf("expected 1 audit failure, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.PaymentProcessed("completed", decimal.NewFromInt(1))
	m.ObservePayment(time.Second)
	m.LegacyConverted(false)
	m.HandlerFailed("x", "fatal")
	m.ObserveHandler("x", time.Second)
	m.EventPublished("x", true)
}
