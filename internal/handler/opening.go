package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/renohq/quote-engine/internal/model"
)

// CreateOpening handles POST /v1/spaces/:id/openings. The owning space's
// geometry is refreshed in the same transaction as the insert unless the
// space is in custom mode.
func (h *EstimateHandler) CreateOpening(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	spaceID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), spaceID, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}

	var body struct {
		Type   string           `json:"type"`
		Name   string           `json:"name"`
		Height *decimal.Decimal `json:"height"`
		Width  *decimal.Decimal `json:"width"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	typ := model.NormalizeOpeningType(body.Type)
	if typ == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be door, window or ventilator"})
	}
	if body.Height == nil || body.Width == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "height and width are required"})
	}
	if !body.Height.IsPositive() || !body.Width.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "height and width must be positive"})
	}

	o := &model.Opening{
		SpaceID: spaceID,
		Type:    typ,
		Name:    strings.TrimSpace(body.Name),
		Height:  *body.Height,
		Width:   *body.Width,
	}
	warnings, err := h.OpeningRepo.Create(c.Request().Context(), o)
	if err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	return c.JSON(http.StatusCreated, echo.Map{"opening": o, "warnings": warnings})
}

// ListOpenings handles GET /v1/spaces/:id/openings.
func (h *EstimateHandler) ListOpenings(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	spaceID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), spaceID, ownerID); err != nil {
		return respondRepoError(c, err)
	}
	items, err := h.OpeningRepo.ListBySpace(c.Request().Context(), spaceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateOpening handles PUT /v1/openings/:id.
func (h *EstimateHandler) UpdateOpening(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.OpeningRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), cur.SpaceID, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}

	var body struct {
		Type   *string          `json:"type"`
		Name   *string          `json:"name"`
		Height *decimal.Decimal `json:"height"`
		Width  *decimal.Decimal `json:"width"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	merged := *cur
	if body.Type != nil {
		typ := model.NormalizeOpeningType(*body.Type)
		if typ == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be door, window or ventilator"})
		}
		merged.Type = typ
	}
	if body.Name != nil {
		merged.Name = strings.TrimSpace(*body.Name)
	}
	if body.Height != nil {
		if !body.Height.IsPositive() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "height must be positive"})
		}
		merged.Height = *body.Height
	}
	if body.Width != nil {
		if !body.Width.IsPositive() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "width must be positive"})
		}
		merged.Width = *body.Width
	}

	warnings, err := h.OpeningRepo.Update(c.Request().Context(), &merged)
	if err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	return c.JSON(http.StatusOK, echo.Map{"opening": &merged, "warnings": warnings})
}

// DeleteOpening handles DELETE /v1/openings/:id.
func (h *EstimateHandler) DeleteOpening(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.OpeningRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), cur.SpaceID, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if err := h.OpeningRepo.Delete(c.Request().Context(), id); err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	return c.NoContent(http.StatusNoContent)
}
