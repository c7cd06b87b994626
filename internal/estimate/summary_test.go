package estimate_test

import (
	"testing"

	"github.com/renohq/quote-engine/internal/estimate"
)

func TestDeliverableTotals(t *testing.T) {
	tests := []struct {
		name       string
		qty        string
		rate       string
		gst        string
		wantAmount string
		wantTax    string
		wantTotal  string
	}{
		{"flooring line", "140", "250", "18", "35000", "6300", "41300"},
		{"single unit item", "1", "25000", "18", "25000", "4500", "29500"},
		{"zero gst", "10", "99.50", "0", "995", "0", "995"},
		{"zero qty", "0", "500", "18", "0", "0", "0"},
		{"fractional qty and rate", "2.5", "120.40", "12", "301", "36.12", "337.12"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, tax, total := estimate.DeliverableTotals(d(tc.qty), d(tc.rate), d(tc.gst))
			if !amount.Equal(d(tc.wantAmount)) {
				t.Errorf("amount = %s, want %s", amount, tc.wantAmount)
			}
			if !tax.Equal(d(tc.wantTax)) {
				t.Errorf("tax = %s, want %s", tax, tc.wantTax)
			}
			if !total.Equal(d(tc.wantTotal)) {
				t.Errorf("total = %s, want %s", total, tc.wantTotal)
			}
		})
	}
}

func TestFoldSummary(t *testing.T) {
	lines := []estimate.Line{
		{Qty: d("140"), Rate: d("250"), Gst: d("18")},
		{Qty: d("1"), Rate: d("25000"), Gst: d("18")},
	}
	got := estimate.FoldSummary(lines)
	if got.Items != 2 {
		t.Errorf("items = %d, want 2", got.Items)
	}
	if !got.Amount.Equal(d("60000")) {
		t.Errorf("amount = %s, want 60000", got.Amount)
	}
	if !got.Tax.Equal(d("10800")) {
		t.Errorf("tax = %s, want 10800", got.Tax)
	}
	if !got.Total.Equal(d("70800")) {
		t.Errorf("total = %s, want 70800", got.Total)
	}
}

func TestFoldSummaryEmpty(t *testing.T) {
	got := estimate.FoldSummary(nil)
	if got.Items != 0 || !got.Amount.IsZero() || !got.Tax.IsZero() || !got.Total.IsZero() {
		t.Errorf("fold of no lines should be all zeros, got %+v", got)
	}
}

// Recomputing a summary with no intervening mutation must yield identical
// results; the fold is required to be a pure function of its input.
func TestFoldSummaryIdempotent(t *testing.T) {
	lines := []estimate.Line{
		{Qty: d("3"), Rate: d("1199.99"), Gst: d("18")},
		{Qty: d("0.5"), Rate: d("48"), Gst: d("5")},
		{Qty: d("12"), Rate: d("75"), Gst: d("28")},
	}
	first := estimate.FoldSummary(lines)
	second := estimate.FoldSummary(lines)
	if first.Items != second.Items ||
		!first.Amount.Equal(second.Amount) ||
		!first.Tax.Equal(second.Tax) ||
		!first.Total.Equal(second.Total) {
		t.Errorf("fold is not idempotent: %+v vs %+v", first, second)
	}
}

func TestRollupQuote(t *testing.T) {
	rows := []estimate.RowTotals{
		{Amount: d("60000"), Tax: d("10800"), Total: d("70800")},
		{Amount: d("35000"), Tax: d("6300"), Total: d("41300")},
	}
	got := estimate.RollupQuote(rows)
	if !got.Amount.Equal(d("95000")) {
		t.Errorf("amount = %s, want 95000", got.Amount)
	}
	if !got.Tax.Equal(d("17100")) {
		t.Errorf("tax = %s, want 17100", got.Tax)
	}
	if !got.Total.Equal(d("112100")) {
		t.Errorf("total = %s, want 112100", got.Total)
	}
}

func TestRollupQuoteEmpty(t *testing.T) {
	got := estimate.RollupQuote(nil)
	if !got.Amount.IsZero() || !got.Tax.IsZero() || !got.Total.IsZero() {
		t.Errorf("rollup of no rows should be all zeros, got %+v", got)
	}
}
