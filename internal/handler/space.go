package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/model"
)

// CreateSpace handles POST /v1/quotes/:id/spaces. The space starts in
// automatic mode: its geometry is derived from the dimensions before the
// insert, and the quote's summary section list is reconciled in the same
// transaction (an unbound section of the same name is bound to the new
// space, otherwise a fresh row is appended).
func (h *EstimateHandler) CreateSpace(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name     string           `json:"name"`
		Category string           `json:"category"`
		Length   *decimal.Decimal `json:"length"`
		Breadth  *decimal.Decimal `json:"breadth"`
		Height   *decimal.Decimal `json:"height"`
		Unit     string           `json:"unit"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	category := model.NormalizeCategory(body.Category)
	if category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	unit := model.NormalizeUnit(body.Unit)
	if unit == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit must be feet or meter"})
	}
	if body.Length == nil || body.Breadth == nil || body.Height == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "length, breadth and height are required"})
	}
	if !body.Length.IsPositive() || !body.Breadth.IsPositive() || !body.Height.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "length, breadth and height must be positive"})
	}

	if _, err := h.QuoteRepo.GetByIDAndOwner(c.Request().Context(), quoteID, ownerID); err != nil {
		return respondRepoError(c, err)
	}

	geo, warnings := estimate.ComputeGeometry(*body.Length, *body.Breadth, *body.Height, nil)
	sp := &model.Space{
		QuoteID:   quoteID,
		Name:      name,
		Category:  category,
		Length:    *body.Length,
		Breadth:   *body.Breadth,
		Height:    *body.Height,
		Unit:      unit,
		Perimeter: geo.Perimeter,
		FloorArea: geo.FloorArea,
		WallArea:  geo.WallArea,
	}
	if err := h.SpaceRepo.Create(c.Request().Context(), sp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create space"})
	}
	h.invalidateQuote(c, quoteID)
	return c.JSON(http.StatusCreated, echo.Map{"space": sp, "warnings": warnings})
}

// ListSpaces handles GET /v1/quotes/:id/spaces.
func (h *EstimateHandler) ListSpaces(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.QuoteRepo.GetByIDAndOwner(c.Request().Context(), quoteID, ownerID); err != nil {
		return respondRepoError(c, err)
	}
	items, err := h.SpaceRepo.ListByQuote(c.Request().Context(), quoteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if wantsMeters(c) {
		for i, sp := range items {
			items[i] = displayInMeters(sp)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSpace handles GET /v1/spaces/:id. With ?display_unit=meter a space
// stored in feet is converted for display; the stored record keeps its
// declared unit.
func (h *EstimateHandler) GetSpace(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if wantsMeters(c) {
		return c.JSON(http.StatusOK, echo.Map{"space": displayInMeters(sp), "display_unit": model.UnitMeter})
	}
	return c.JSON(http.StatusOK, echo.Map{"space": sp})
}

// UpdateSpace handles PUT /v1/spaces/:id. In automatic mode the merged
// dimensions and the space's current openings drive a fresh geometry
// computation; once custom is set the caller's geometry figures are taken
// verbatim and frozen until custom is cleared again. The write is rejected
// with 409 when the space changed since the revision the caller read.
func (h *EstimateHandler) UpdateSpace(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}

	var body struct {
		Name      *string          `json:"name"`
		Category  *string          `json:"category"`
		Length    *decimal.Decimal `json:"length"`
		Breadth   *decimal.Decimal `json:"breadth"`
		Height    *decimal.Decimal `json:"height"`
		Unit      *string          `json:"unit"`
		Custom    *bool            `json:"custom"`
		Perimeter *decimal.Decimal `json:"perimeter"`
		FloorArea *decimal.Decimal `json:"floor_area"`
		WallArea  *decimal.Decimal `json:"wall_area"`
		Revision  *uint64          `json:"revision"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	merged := *cur
	if body.Name != nil {
		if strings.TrimSpace(*body.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		merged.Name = strings.TrimSpace(*body.Name)
	}
	if body.Category != nil {
		cat := model.NormalizeCategory(*body.Category)
		if cat == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		merged.Category = cat
	}
	if body.Unit != nil {
		unit := model.NormalizeUnit(*body.Unit)
		if unit == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit must be feet or meter"})
		}
		merged.Unit = unit
	}
	for _, dim := range []struct {
		val  *decimal.Decimal
		dst  *decimal.Decimal
		name string
	}{
		{body.Length, &merged.Length, "length"},
		{body.Breadth, &merged.Breadth, "breadth"},
		{body.Height, &merged.Height, "height"},
	} {
		if dim.val == nil {
			continue
		}
		if !dim.val.IsPositive() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": dim.name + " must be positive"})
		}
		*dim.dst = *dim.val
	}
	if body.Custom != nil {
		merged.Custom = *body.Custom
	}

	var warnings []string
	if merged.Custom {
		// Custom mode: user-supplied figures are taken verbatim; fields
		// not sent keep their frozen values.
		for _, g := range []struct {
			val *decimal.Decimal
			dst *decimal.Decimal
		}{
			{body.Perimeter, &merged.Perimeter},
			{body.FloorArea, &merged.FloorArea},
			{body.WallArea, &merged.WallArea},
		} {
			if g.val != nil {
				*g.dst = *g.val
			}
		}
	} else {
		if body.Perimeter != nil || body.FloorArea != nil || body.WallArea != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "geometry fields require custom mode"})
		}
		openings, err := h.OpeningRepo.ListBySpace(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		dims := make([]estimate.OpeningDims, 0, len(openings))
		for _, o := range openings {
			dims = append(dims, estimate.OpeningDims{Height: o.Height, Width: o.Width})
		}
		var geo estimate.Geometry
		geo, warnings = estimate.ComputeGeometry(merged.Length, merged.Breadth, merged.Height, dims)
		merged.Perimeter, merged.FloorArea, merged.WallArea = geo.Perimeter, geo.FloorArea, geo.WallArea
	}

	expectedRev := cur.Revision
	if body.Revision != nil {
		expectedRev = *body.Revision
	}
	if err := h.SpaceRepo.Update(c.Request().Context(), &merged, expectedRev); err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, merged.QuoteID)
	return c.JSON(http.StatusOK, echo.Map{"space": &merged, "warnings": warnings})
}

// DeleteSpace handles DELETE /v1/spaces/:id, cascading to the space's
// openings, deliverables and summary row.
func (h *EstimateHandler) DeleteSpace(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if err := h.SpaceRepo.Delete(c.Request().Context(), id); err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	return c.NoContent(http.StatusNoContent)
}

// wantsMeters reports whether the request asked for display conversion of
// a feet-denominated space.
func wantsMeters(c echo.Context) bool {
	return model.NormalizeUnit(c.QueryParam("display_unit")) == model.UnitMeter
}

// displayInMeters converts a feet-denominated space for presentation.
// Spaces already stored in meters pass through unchanged; nothing here is
// ever written back.
func displayInMeters(sp *model.Space) *model.Space {
	if sp.Unit != model.UnitFeet {
		return sp
	}
	conv := *sp
	conv.Length = estimate.FeetToMeters(sp.Length)
	conv.Breadth = estimate.FeetToMeters(sp.Breadth)
	conv.Height = estimate.FeetToMeters(sp.Height)
	conv.Perimeter = estimate.FeetToMeters(sp.Perimeter)
	conv.FloorArea = estimate.SquareFeetToSquareMeters(sp.FloorArea)
	conv.WallArea = estimate.SquareFeetToSquareMeters(sp.WallArea)
	conv.Unit = model.UnitMeter
	return &conv
}
