// Package pricing computes effective prices, discounts, and GST totals.
// All arithmetic is decimal; each line is rounded to two places before
// summing so invoice lines always add up to the order totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/desikart-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// Line is one priced cart or order line.
type Line struct {
	ProductID string
	Name      string
	HSNCode   string
	GSTRate   decimal.Decimal
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// Quote is the priced summary of a set of lines.
type Quote struct {
	Lines     []Line
	Subtotal  decimal.Decimal
	GSTAmount decimal.Decimal
	Total     decimal.Decimal
}

// EffectivePrice returns the discounted price when one is set and lower than
// the list price, otherwise the list price.
func EffectivePrice(p *models.Product) decimal.Decimal {
	if p.DiscountedPrice != nil && p.DiscountedPrice.GreaterThan(decimal.Zero) && p.DiscountedPrice.LessThan(p.Price) {
		return *p.DiscountedPrice
	}
	return p.Price
}

// DiscountPercentage returns the whole-number discount off the list price,
// zero when no discount applies.
func DiscountPercentage(p *models.Product) int {
	if p.DiscountedPrice == nil || p.Price.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	effective := EffectivePrice(p)
	if effective.Equal(p.Price) {
		return 0
	}
	off := p.Price.Sub(effective).Mul(hundred).Div(p.Price)
	return int(off.Round(0).IntPart())
}

// LineSubtotal is unit price times quantity, rounded to two places.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// LineTax applies the GST rate to a line subtotal, rounded to two places.
func LineTax(subtotal, gstRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(gstRate).Div(hundred).Round(2)
}

// PriceLine builds a fully priced line from a product snapshot.
func PriceLine(productID, name, hsnCode string, unitPrice, gstRate decimal.Decimal, quantity int) Line {
	subtotal := LineSubtotal(unitPrice, quantity)
	tax := LineTax(subtotal, gstRate)
	return Line{
		ProductID: productID,
		Name:      name,
		HSNCode:   hsnCode,
		GSTRate:   gstRate,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
	}
}

// Sum aggregates already-priced lines into a quote. Lines keep their
// individual rounding; totals are plain sums of the rounded lines.
func Sum(lines []Line) Quote {
	quote := Quote{Lines: lines, Subtotal: decimal.Zero, GSTAmount: decimal.Zero, Total: decimal.Zero}
	for _, line := range lines {
		quote.Subtotal = quote.Subtotal.Add(line.Subtotal)
		quote.GSTAmount = quote.GSTAmount.Add(line.Tax)
	}
	quote.Total = quote.Subtotal.Add(quote.GSTAmount)
	return quote
}

// QuoteCartItems prices cart items against their preloaded products.
func QuoteCartItems(items []models.CartItem) Quote {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		product := item.Product
		lines = append(lines, PriceLine(
			product.ID.String(),
			product.Name,
			product.HSNCode,
			EffectivePrice(&product),
			product.GSTRate,
			item.Quantity,
		))
	}
	return Sum(lines)
}

// QuoteOrderItems reprices frozen order lines, used when rebuilding invoices.
func QuoteOrderItems(items []models.OrderItem) Quote {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, PriceLine(
			item.ProductID.String(),
			item.Name,
			item.HSNCode,
			item.UnitPrice,
			item.GSTRate,
			item.Quantity,
		))
	}
	return Sum(lines)
}
