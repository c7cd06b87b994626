package estimate_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/renohq/quote-engine/internal/estimate"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeGeometry(t *testing.T) {
	tests := []struct {
		name          string
		length        string
		breadth       string
		height        string
		openings      []estimate.OpeningDims
		wantPerimeter string
		wantFloor     string
		wantWall      string
		wantWarnings  int
	}{
		{
			name:   "room without openings",
			length: "12", breadth: "6", height: "9",
			wantPerimeter: "36", wantFloor: "72", wantWall: "324",
		},
		{
			name:   "room with a door",
			length: "12", breadth: "6", height: "9",
			openings:      []estimate.OpeningDims{{Height: d("7"), Width: d("2.5")}},
			wantPerimeter: "36", wantFloor: "72", wantWall: "306.5",
		},
		{
			name:   "multiple openings accumulate",
			length: "10", breadth: "10", height: "10",
			openings: []estimate.OpeningDims{
				{Height: d("7"), Width: d("3")},
				{Height: d("4"), Width: d("4")},
				{Height: d("1.5"), Width: d("2")},
			},
			wantPerimeter: "40", wantFloor: "100", wantWall: "360",
		},
		{
			name:   "fractional dimensions stay exact",
			length: "12.25", breadth: "6.75", height: "9.5",
			wantPerimeter: "38", wantFloor: "82.6875", wantWall: "361",
		},
		{
			name:   "negative dimensions are treated as zero",
			length: "-5", breadth: "6", height: "9",
			wantPerimeter: "12", wantFloor: "0", wantWall: "108",
		},
		{
			name:   "negative opening dimensions are treated as zero",
			length: "12", breadth: "6", height: "9",
			openings:      []estimate.OpeningDims{{Height: d("-7"), Width: d("2.5")}},
			wantPerimeter: "36", wantFloor: "72", wantWall: "324",
		},
		{
			name:   "openings exceeding wall surface go negative with a warning",
			length: "2", breadth: "2", height: "2",
			openings:      []estimate.OpeningDims{{Height: d("5"), Width: d("5")}},
			wantPerimeter: "8", wantFloor: "4", wantWall: "-9",
			wantWarnings:  1,
		},
		{
			name:   "zero everything",
			length: "0", breadth: "0", height: "0",
			wantPerimeter: "0", wantFloor: "0", wantWall: "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			geo, warnings := estimate.ComputeGeometry(d(tc.length), d(tc.breadth), d(tc.height), tc.openings)
			if !geo.Perimeter.Equal(d(tc.wantPerimeter)) {
				t.Errorf("perimeter = %s, want %s", geo.Perimeter, tc.wantPerimeter)
			}
			if !geo.FloorArea.Equal(d(tc.wantFloor)) {
				t.Errorf("floor area = %s, want %s", geo.FloorArea, tc.wantFloor)
			}
			if !geo.WallArea.Equal(d(tc.wantWall)) {
				t.Errorf("wall area = %s, want %s", geo.WallArea, tc.wantWall)
			}
			if len(warnings) != tc.wantWarnings {
				t.Errorf("warnings = %v, want %d of them", warnings, tc.wantWarnings)
			}
		})
	}
}

func TestComputeGeometryIsDeterministic(t *testing.T) {
	openings := []estimate.OpeningDims{{Height: d("7"), Width: d("2.5")}}
	a, _ := estimate.ComputeGeometry(d("12"), d("6"), d("9"), openings)
	b, _ := estimate.ComputeGeometry(d("12"), d("6"), d("9"), openings)
	if !a.Perimeter.Equal(b.Perimeter) || !a.FloorArea.Equal(b.FloorArea) || !a.WallArea.Equal(b.WallArea) {
		t.Errorf("two identical computations disagree: %+v vs %+v", a, b)
	}
}

func TestUnitConversionIsDisplayOnly(t *testing.T) {
	// 12 ft -> 3.6576 m, 72 sqft -> 6.68901888 sqm. Exact decimal expected.
	if got := estimate.FeetToMeters(d("12")); !got.Equal(d("3.6576")) {
		t.Errorf("FeetToMeters(12) = %s, want 3.6576", got)
	}
	if got := estimate.SquareFeetToSquareMeters(d("72")); !got.Equal(d("6.68901888")) {
		t.Errorf("SquareFeetToSquareMeters(72) = %s, want 6.68901888", got)
	}
}
