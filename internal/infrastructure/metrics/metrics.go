package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	// Payment metrics
	PaymentsProcessed *prometheus.CounterVec
	PaymentDuration   prometheus.Histogram
	PaymentAmount     prometheus.Histogram
	LegacyConversions *prometheus.CounterVec

	// Dispatch metrics
	HandlerFailures *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PaymentsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosettle_payments_total",
				Help: "Total payments by final status",
			},
			[]string{"status"},
		),
		PaymentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosettle_payment_duration_seconds",
			Help:    "Duration of payment creation including settlement",
			Buckets: prometheus.DefBuckets,
		}),
		PaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosettle_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		LegacyConversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosettle_legacy_conversions_total",
				Help: "Total MT103 conversions by result",
			},
			[]string{"result"},
		),

		HandlerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosettle_handler_failures_total",
				Help: "Total event handler failures by handler and policy",
			},
			[]string{"handler", "policy"},
		),
		HandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gosettle_handler_duration_seconds",
				Help:    "Event handler duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosettle_outbox_events_published_total",
				Help: "Total outbox events published by type and result",
			},
			[]string{"event_type", "result"},
		),
	}
}

// PaymentProcessed counts a finished payment.
func (m *Metrics) PaymentProcessed(status string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.PaymentsProcessed.WithLabelValues(status).Inc()
	m.PaymentAmount.Observe(amount.InexactFloat64())
}

// ObservePayment records how long a payment took.
func (m *Metrics) ObservePayment(d time.Duration) {
	if m == nil {
		return
	}
	m.PaymentDuration.Observe(d.Seconds())
}

// LegacyConverted counts an MT103 conversion attempt.
func (m *Metrics) LegacyConverted(ok bool) {
	if m == nil {
		return
	}
	m.LegacyConversions.WithLabelValues(result(ok)).Inc()
}

// HandlerFailed counts a failed event handler.
func (m *Metrics) HandlerFailed(handler, policy string) {
	if m == nil {
		return
	}
	m.HandlerFailures.WithLabelValues(handler, policy).Inc()
}

// ObserveHandler records how long one handler ran.
func (m *Metrics) ObserveHandler(handler string, d time.Duration) {
	if m == nil {
		return
	}
	m.HandlerDuration.WithLabelValues(handler).Observe(d.Seconds())
}

// EventPublished counts an outbox publication attempt.
func (m *Metrics) EventPublished(eventType string, ok bool) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
