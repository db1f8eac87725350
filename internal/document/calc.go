package document

import "github.com/shopspring/decimal"

// LineTotal multiplies carat by price per carat exactly. It has no error
// path; callers validate carat > 0 and price > 0 before calling. Rounding to
// two places happens at render time, not here.
func LineTotal(carat, pricePerCarat decimal.Decimal) decimal.Decimal {
	return carat.Mul(pricePerCarat)
}

// GrandTotal computes subtotal - discount - collectedPayment + shipmentCost.
// Zero-value decimals stand in for absent adjustments.
func GrandTotal(items []LineItem, discount, collectedPayment, shipmentCost decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total.Sub(discount).Sub(collectedPayment).Add(shipmentCost)
}
