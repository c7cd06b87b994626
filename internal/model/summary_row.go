package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryRow is the per-space rollup shown in the quote summary. A row may
// exist before its space does: sections added up front carry a nil SpaceID
// until a space with the same name is created in the quote, at which point
// the row is bound to it. At most one row per space exists in a quote.
//
// Items, Amount, Tax and Total are maintained by the aggregator as a fold
// over the space's current deliverables. When Overridden is true the money
// fields were entered manually; deliverable-driven recomputation then only
// refreshes the item count and leaves the money fields alone until the
// override is explicitly cleared.
//
// Revision works like Space.Revision: a compare-and-swap counter guarding
// concurrent manual edits.
type SummaryRow struct {
	ID           uint64          `json:"id"`
	QuoteID      uint64          `json:"quote_id"`
	SpaceID      *uint64         `json:"space_id"`
	Space        string          `json:"space"`
	WorkPackages uint32          `json:"work_packages"`
	Items        uint32          `json:"items"`
	Amount       decimal.Decimal `json:"amount"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Overridden   bool            `json:"overridden"`
	Position     uint32          `json:"position"`
	Revision     uint64          `json:"revision"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
