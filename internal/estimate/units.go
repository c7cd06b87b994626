package estimate

import "github.com/shopspring/decimal"

// metersPerFoot is used strictly for presentation; the canonical stored
// unit of a space is never converted.
var metersPerFoot = decimal.RequireFromString("0.3048")

// FeetToMeters converts a linear dimension for display.
func FeetToMeters(d decimal.Decimal) decimal.Decimal {
	return d.Mul(metersPerFoot)
}

// SquareFeetToSquareMeters converts an area for display.
func SquareFeetToSquareMeters(d decimal.Decimal) decimal.Decimal {
	return d.Mul(metersPerFoot).Mul(metersPerFoot)
}
