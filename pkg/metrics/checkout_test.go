package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.IncOrderPlaced("razorpay")
	metrics.IncOrderPlaced("razorpay")
	metrics.IncOrderPlaced("direct")
	metrics.IncPaymentConfirmed()
	metrics.IncPaymentReplayed()
	metrics.IncInvoiceFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "orders_placed_total", "method", "razorpay"); err != nil {
		t.Fatalf("fetch razorpay orders: %v", err)
	} else if got != 2 {
		t.Fatalf("expected razorpay orders=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "orders_placed_total", "method", "direct"); err != nil {
		t.Fatalf("fetch direct orders: %v", err)
	} else if got != 1 {
		t.Fatalf("expected direct orders=1, got %f", got)
	}

	if got, err := fetchPlainCounter(mfs, "payments_confirmed_total"); err != nil {
		t.Fatalf("fetch confirmations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected confirmations=1, got %f", got)
	}

	if got, err := fetchPlainCounter(mfs, "payment_confirmations_replayed_total"); err != nil {
		t.Fatalf("fetch replays: %v", err)
	} else if got != 1 {
		t.Fatalf("expected replays=1, got %f", got)
	}

	if got, err := fetchPlainCounter(mfs, "invoice_generation_failures_total"); err != nil {
		t.Fatalf("fetch invoice failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected invoice failures=1, got %f", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var metrics *CheckoutMetrics
	metrics.IncOrderPlaced("razorpay")
	metrics.IncPaymentConfirmed()
	metrics.IncPaymentReplayed()
	metrics.IncInvoiceFailure()

	unregistered := NewCheckoutMetrics(nil)
	unregistered.IncOrderPlaced("")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchPlainCounter(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetCounter().GetValue(), nil
	}
	return 0, fmt.Errorf("metric %q has no samples", name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
