// Package estimate holds the pure computation core of the quoting engine:
// geometry derivation for spaces, pricing of deliverable line items, the
// per-space summary fold and the quote-level rollup. Nothing in this
// package touches storage or the network, which keeps every rule unit
// testable in isolation. All arithmetic is exact decimal arithmetic.
package estimate

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// WarnNegativeWallArea is attached to a write response when the combined
// opening area exceeds the wall surface. The value is stored as computed,
// never clamped; the warning exists so the caller can see the improbable
// result instead of having it silently hidden.
const WarnNegativeWallArea = "wall area is negative: openings exceed the wall surface"

// OpeningDims carries the dimensions of one opening, in the same unit as
// the owning space.
type OpeningDims struct {
	Height decimal.Decimal
	Width  decimal.Decimal
}

// Geometry is the derived shape of a space, in the space's own unit.
type Geometry struct {
	Perimeter decimal.Decimal
	FloorArea decimal.Decimal
	WallArea  decimal.Decimal
}

// ComputeGeometry derives perimeter, floor area and wall area from raw
// dimensions and the space's openings:
//
//	perimeter = 2 × (length + breadth)
//	floorArea = length × breadth
//	wallArea  = perimeter × height − Σ (opening.height × opening.width)
//
// Negative inputs are treated as zero here; rejecting them is the write
// boundary's job. The returned warnings are non-fatal observations about
// the result, currently only WarnNegativeWallArea.
func ComputeGeometry(length, breadth, height decimal.Decimal, openings []OpeningDims) (Geometry, []string) {
	l := floorZero(length)
	b := floorZero(breadth)
	h := floorZero(height)

	perimeter := two.Mul(l.Add(b))
	floorArea := l.Mul(b)

	openingsArea := decimal.Zero
	for _, o := range openings {
		openingsArea = openingsArea.Add(floorZero(o.Height).Mul(floorZero(o.Width)))
	}
	wallArea := perimeter.Mul(h).Sub(openingsArea)

	var warnings []string
	if wallArea.IsNegative() {
		warnings = append(warnings, WarnNegativeWallArea)
	}
	return Geometry{Perimeter: perimeter, FloorArea: floorArea, WallArea: wallArea}, warnings
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
