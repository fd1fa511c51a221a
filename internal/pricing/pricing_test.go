package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/desikart-backend/pkg/db/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEffectivePrice(t *testing.T) {
	list := dec("500.00")
	discounted := dec("400.00")
	higher := dec("600.00")
	zero := decimal.Zero

	cases := []struct {
		name    string
		product models.Product
		want    decimal.Decimal
	}{
		{"no discount", models.Product{Price: list}, list},
		{"discount applies", models.Product{Price: list, DiscountedPrice: &discounted}, discounted},
		{"discount above list ignored", models.Product{Price: list, DiscountedPrice: &higher}, list},
		{"zero discount ignored", models.Product{Price: list, DiscountedPrice: &zero}, list},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EffectivePrice(&tc.product); !got.Equal(tc.want) {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestDiscountPercentage(t *testing.T) {
	discounted := dec("400.00")
	product := models.Product{Price: dec("500.00"), DiscountedPrice: &discounted}
	if got := DiscountPercentage(&product); got != 20 {
		t.Fatalf("expected 20%% off, got %d", got)
	}

	if got := DiscountPercentage(&models.Product{Price: dec("500.00")}); got != 0 {
		t.Fatalf("expected 0%% without discount, got %d", got)
	}

	third := dec("66.67")
	odd := models.Product{Price: dec("100.00"), DiscountedPrice: &third}
	if got := DiscountPercentage(&odd); got != 33 {
		t.Fatalf("expected rounded 33%%, got %d", got)
	}
}

func TestPriceLineStandardGST(t *testing.T) {
	line := PriceLine("p1", "Steel Bottle", "73239390", dec("100.00"), dec("18.00"), 2)

	if !line.Subtotal.Equal(dec("200.00")) {
		t.Fatalf("subtotal %s", line.Subtotal)
	}
	if !line.Tax.Equal(dec("36.00")) {
		t.Fatalf("tax %s", line.Tax)
	}
	if !line.Total.Equal(dec("236.00")) {
		t.Fatalf("total %s", line.Total)
	}
}

func TestPriceLineRoundsPerLine(t *testing.T) {
	// 33.33 * 3 = 99.99, 5% of that is 4.9995 which rounds to 5.00
	line := PriceLine("p1", "Loose Tea", "09024020", dec("33.33"), dec("5.00"), 3)
	if !line.Subtotal.Equal(dec("99.99")) {
		t.Fatalf("subtotal %s", line.Subtotal)
	}
	if !line.Tax.Equal(dec("5.00")) {
		t.Fatalf("tax %s", line.Tax)
	}
}

func TestSumAddsRoundedLines(t *testing.T) {
	lines := []Line{
		PriceLine("p1", "A", "11111111", dec("100.00"), dec("18.00"), 2),
		PriceLine("p2", "B", "22222222", dec("33.33"), dec("5.00"), 3),
	}
	quote := Sum(lines)

	if !quote.Subtotal.Equal(dec("299.99")) {
		t.Fatalf("subtotal %s", quote.Subtotal)
	}
	if !quote.GSTAmount.Equal(dec("41.00")) {
		t.Fatalf("gst %s", quote.GSTAmount)
	}
	if !quote.Total.Equal(dec("340.99")) {
		t.Fatalf("total %s", quote.Total)
	}
}

func TestQuoteCartItemsUsesEffectivePrice(t *testing.T) {
	discounted := dec("400.00")
	product := models.Product{
		ID:              uuid.New(),
		Name:            "Kurta",
		HSNCode:         "62052000",
		Price:           dec("500.00"),
		DiscountedPrice: &discounted,
		GSTRate:         dec("12.00"),
	}
	quote := QuoteCartItems([]models.CartItem{{ProductID: product.ID, Quantity: 2, Product: product}})

	if len(quote.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(quote.Lines))
	}
	if !quote.Lines[0].UnitPrice.Equal(dec("400.00")) {
		t.Fatalf("expected discounted unit price, got %s", quote.Lines[0].UnitPrice)
	}
	if !quote.Subtotal.Equal(dec("800.00")) {
		t.Fatalf("subtotal %s", quote.Subtotal)
	}
	if !quote.GSTAmount.Equal(dec("96.00")) {
		t.Fatalf("gst %s", quote.GSTAmount)
	}
	if !quote.Total.Equal(dec("896.00")) {
		t.Fatalf("total %s", quote.Total)
	}
}

func TestQuoteOrderItemsMatchesFrozenValues(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: uuid.New(), Name: "Kurta", HSNCode: "62052000", GSTRate: dec("12.00"), UnitPrice: dec("400.00"), Quantity: 2},
	}
	quote := QuoteOrderItems(items)
	if !quote.Total.Equal(dec("896.00")) {
		t.Fatalf("total %s", quote.Total)
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	quote := QuoteCartItems(nil)
	if !quote.Subtotal.IsZero() || !quote.GSTAmount.IsZero() || !quote.Total.IsZero() {
		t.Fatalf("expected zero quote, got %+v", quote)
	}
}
