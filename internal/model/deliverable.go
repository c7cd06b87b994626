package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deliverable is a priced line item billed against a space. Qty, Rate and
// Gst are stored; Amount, TaxAmount and Total are derived on read:
//
//	amount = qty × rate
//	taxAmount = amount × gst / 100
//	total = amount + taxAmount
//
// Spec, Code, Category and Unit are free-text fields describing the item
// ("sqft", "Nos", a catalogue code and so on). Every deliverable mutation
// synchronously recomputes the owning summary row before the response is
// returned, so readers never observe stale totals.
type Deliverable struct {
	ID          uint64          `json:"id"`
	SpaceID     uint64          `json:"space_id"`
	Description string          `json:"description"`
	Spec        string          `json:"spec"`
	Code        string          `json:"code"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
	Gst         decimal.Decimal `json:"gst"`
	Amount      decimal.Decimal `json:"amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
