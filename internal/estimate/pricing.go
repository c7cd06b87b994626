package estimate

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DeliverableTotals derives the money fields of a single line item from its
// stored quantity, unit rate and GST percentage. Amounts are unitless
// decimals; the engine is currency-agnostic.
func DeliverableTotals(qty, rate, gst decimal.Decimal) (amount, tax, total decimal.Decimal) {
	amount = qty.Mul(rate)
	tax = amount.Mul(gst).Div(hundred)
	total = amount.Add(tax)
	return amount, tax, total
}
