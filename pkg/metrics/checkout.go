package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the order and payment pipeline.
type CheckoutMetrics struct {
	ordersPlaced      *prometheus.CounterVec
	paymentsConfirmed prometheus.Counter
	paymentsReplayed  prometheus.Counter
	invoiceFailures   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders created, labelled by payment method.",
	}, []string{"method"})
	paymentsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Payment confirmations that settled an order.",
	})
	paymentsReplayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_confirmations_replayed_total",
		Help: "Payment confirmations received for already-settled orders.",
	})
	invoiceFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoice_generation_failures_total",
		Help: "Invoice generation attempts that failed after settlement.",
	})
	reg.MustRegister(ordersPlaced, paymentsConfirmed, paymentsReplayed, invoiceFailures)
	return &CheckoutMetrics{
		ordersPlaced:      ordersPlaced,
		paymentsConfirmed: paymentsConfirmed,
		paymentsReplayed:  paymentsReplayed,
		invoiceFailures:   invoiceFailures,
	}
}

// IncOrderPlaced increments the order counter for the given payment method.
func (c *CheckoutMetrics) IncOrderPlaced(method string) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPaymentConfirmed increments the settled-payment counter.
func (c *CheckoutMetrics) IncPaymentConfirmed() {
	if c == nil || c.paymentsConfirmed == nil {
		return
	}
	c.paymentsConfirmed.Inc()
}

// IncPaymentReplayed increments the replayed-confirmation counter.
func (c *CheckoutMetrics) IncPaymentReplayed() {
	if c == nil || c.paymentsReplayed == nil {
		return
	}
	c.paymentsReplayed.Inc()
}

// IncInvoiceFailure increments the invoice failure counter.
func (c *CheckoutMetrics) IncInvoiceFailure() {
	if c == nil || c.invoiceFailures == nil {
		return
	}
	c.invoiceFailures.Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
