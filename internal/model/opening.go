package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Opening types. An opening is cut into a space's walls and reduces the
// derived wall area.
const (
	OpeningDoor       = "DOOR"
	OpeningWindow     = "WINDOW"
	OpeningVentilator = "VENTILATOR"
)

// Opening is a door, window or ventilator attached to a space. Height and
// width are expressed in the owning space's declared unit. Every opening
// mutation triggers a geometry recomputation on the owner unless the owner
// is in custom mode.
type Opening struct {
	ID        uint64          `json:"id"`
	SpaceID   uint64          `json:"space_id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Height    decimal.Decimal `json:"height"`
	Width     decimal.Decimal `json:"width"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizeOpeningType maps user input to one of the opening type constants,
// returning "" for unknown values.
func NormalizeOpeningType(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case OpeningDoor:
		return OpeningDoor
	case OpeningWindow:
		return OpeningWindow
	case OpeningVentilator:
		return OpeningVentilator
	}
	return ""
}
