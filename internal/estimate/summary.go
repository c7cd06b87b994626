package estimate

import "github.com/shopspring/decimal"

// Line carries the stored pricing fields of one deliverable, the inputs to
// the summary fold.
type Line struct {
	Qty  decimal.Decimal
	Rate decimal.Decimal
	Gst  decimal.Decimal
}

// SummaryTotals is the per-space aggregate over a set of deliverables.
type SummaryTotals struct {
	Items  uint32
	Amount decimal.Decimal
	Tax    decimal.Decimal
	Total  decimal.Decimal
}

// RowTotals carries the money fields of one summary row, the inputs to the
// quote rollup.
type RowTotals struct {
	Amount decimal.Decimal
	Tax    decimal.Decimal
	Total  decimal.Decimal
}

// QuoteTotals is the quote-level aggregate over all summary rows.
type QuoteTotals struct {
	Amount decimal.Decimal
	Tax    decimal.Decimal
	Total  decimal.Decimal
}

// FoldSummary folds the current deliverable set of a space into its summary
// totals. The fold is pure: feeding it the same lines twice yields identical
// output, which is what makes recomputation safe to run on every mutation.
func FoldSummary(lines []Line) SummaryTotals {
	t := SummaryTotals{Amount: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, ln := range lines {
		amount, tax, _ := DeliverableTotals(ln.Qty, ln.Rate, ln.Gst)
		t.Amount = t.Amount.Add(amount)
		t.Tax = t.Tax.Add(tax)
		t.Items++
	}
	t.Total = t.Amount.Add(t.Tax)
	return t
}

// RollupQuote sums summary rows into quote-level totals. Callers must feed
// it live row data on every read; the result is never cached so it cannot
// drift from the rows.
func RollupQuote(rows []RowTotals) QuoteTotals {
	t := QuoteTotals{Amount: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, r := range rows {
		t.Amount = t.Amount.Add(r.Amount)
		t.Tax = t.Tax.Add(r.Tax)
		t.Total = t.Total.Add(r.Total)
	}
	return t
}
