package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the top-level aggregate. It owns an ordered set of summary rows
// (the order defines the section tabs in the client) and exposes live
// rollup totals computed from those rows on every read. The totals are
// never stored independently so they cannot drift from the rows.
//
// Fields:
//
//	ID        – primary key identifier.
//	OwnerID   – user ID of the quote owner.
//	Name      – human readable label for the quote.
//	Rows      – summary rows in section order (populated on detail reads).
//	Amount    – Σ rows.amount, computed on read.
//	Tax       – Σ rows.tax, computed on read.
//	Total     – Σ rows.total, computed on read.
type Quote struct {
	ID        uint64          `json:"id"`
	OwnerID   uint64          `json:"owner_id"`
	Name      string          `json:"name"`
	Rows      []*SummaryRow   `json:"rows,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
