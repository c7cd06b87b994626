package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unit values accepted for space dimensions. All dimensions and derived
// geometry of a space are expressed in this single declared unit; there is
// no implicit conversion on write. Feet may be converted to meters at
// presentation time only.
const (
	UnitFeet  = "FEET"
	UnitMeter = "METER"
)

// Space categories offered by the client when naming a room.
var spaceCategories = []string{
	"Living Room", "Bedroom", "Kitchen", "Bathroom", "Dining Room",
	"Hall", "Study Room", "Balcony", "Toilet",
}

// Space is a physical room or area inside a quote. Length, breadth and
// height are the canonical inputs; perimeter, floor area and wall area are
// derived from them and from the space's openings whenever Custom is false.
// When Custom is true the three geometry fields are user-supplied and are
// frozen against recomputation until the flag is cleared.
//
// Revision is a monotonic counter bumped on every committed mutation of the
// space or of its openings. Writers send the revision they read; a mismatch
// on write means another editor got there first and the write is rejected.
type Space struct {
	ID        uint64          `json:"id"`
	QuoteID   uint64          `json:"quote_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Length    decimal.Decimal `json:"length"`
	Breadth   decimal.Decimal `json:"breadth"`
	Height    decimal.Decimal `json:"height"`
	Unit      string          `json:"unit"`
	Perimeter decimal.Decimal `json:"perimeter"`
	FloorArea decimal.Decimal `json:"floor_area"`
	WallArea  decimal.Decimal `json:"wall_area"`
	Custom    bool            `json:"custom"`
	Revision  uint64          `json:"revision"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizeUnit maps user input such as "feet", "ft", "m" or "meter" to the
// canonical unit constant. It returns "" when the input is not a known unit.
func NormalizeUnit(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FEET", "FT", "FOOT":
		return UnitFeet
	case "METER", "METERS", "METRE", "M":
		return UnitMeter
	}
	return ""
}

// NormalizeCategory matches user input against the known category list
// case-insensitively and returns the canonical spelling, or "" when the
// category is unknown.
func NormalizeCategory(raw string) string {
	s := strings.TrimSpace(raw)
	for _, c := range spaceCategories {
		if strings.EqualFold(c, s) {
			return c
		}
	}
	return ""
}
