package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Metrics aggregates the storefront's business-level counters. HTTP-level
// metrics live in the middleware; these count domain outcomes.
type Metrics struct {
	paymentsTotal *prometheus.CounterVec
	ordersPlaced  prometheus.Counter
	couponsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers the business metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		paymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_payments_total",
				Help: "Charge attempts by outcome code",
			},
			[]string{"outcome"},
		),
		ordersPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_orders_placed_total",
				Help: "Orders recorded after successful payment",
			},
		),
		couponsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_coupon_applications_total",
				Help: "Coupon application attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.paymentsTotal, m.ordersPlaced, m.couponsTotal)
	return m
}

// NewTestMetrics creates metrics on a private registry, for tests.
func NewTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// PaymentAttempt records a charge attempt outcome, "approved" or a decline
// code.
func (m *Metrics) PaymentAttempt(outcome string) {
	m.paymentsTotal.WithLabelValues(outcome).Inc()
}

// OrderPlaced records a completed order.
func (m *Metrics) OrderPlaced() {
	m.ordersPlaced.Inc()
}

// CouponApplied records a coupon application result, "accepted" or
// "rejected".
func (m *Metrics) CouponApplied(result string) {
	m.couponsTotal.WithLabelValues(result).Inc()
}
