package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/renohq/quote-engine/internal/model"
)

// CreateDeliverable handles POST /v1/spaces/:id/deliverables. The owning
// summary row is recomputed in the same transaction as the insert and the
// fresh row is returned with the line item, so the caller never has to
// refetch to see consistent totals.
func (h *EstimateHandler) CreateDeliverable(c echo.Context) error {
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
		Description string           `json:"description"`
		Spec        string           `json:"spec"`
		Code        string           `json:"code"`
		Category    string           `json:"category"`
		Unit        string           `json:"unit"`
		Qty         *decimal.Decimal `json:"qty"`
		Rate        *decimal.Decimal `json:"rate"`
		Gst         *decimal.Decimal `json:"gst"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateLine(strings.TrimSpace(body.Description), body.Qty, body.Rate, body.Gst); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	d := &model.Deliverable{
		SpaceID:     spaceID,
		Description: strings.TrimSpace(body.Description),
		Spec:        strings.TrimSpace(body.Spec),
		Code:        strings.TrimSpace(body.Code),
		Category:    strings.TrimSpace(body.Category),
		Unit:        strings.TrimSpace(body.Unit),
		Qty:         *body.Qty,
		Rate:        *body.Rate,
		Gst:         *body.Gst,
	}
	row, err := h.DeliverableRepo.Create(c.Request().Context(), d)
	if err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	h.publishRecompute(c, "deliverable.created", row)
	return c.JSON(http.StatusCreated, echo.Map{"deliverable": d, "summary_row": row})
}

// ListDeliverables handles GET /v1/spaces/:id/deliverables.
func (h *EstimateHandler) ListDeliverables(c echo.Context) error {
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
	items, err := h.DeliverableRepo.ListBySpace(c.Request().Context(), spaceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateDeliverable handles PUT /v1/deliverables/:id.
func (h *EstimateHandler) UpdateDeliverable(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.DeliverableRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), cur.SpaceID, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}

	var body struct {
		Description *string          `json:"description"`
		Spec        *string          `json:"spec"`
		Code        *string          `json:"code"`
		Category    *string          `json:"category"`
		Unit        *string          `json:"unit"`
		Qty         *decimal.Decimal `json:"qty"`
		Rate        *decimal.Decimal `json:"rate"`
		Gst         *decimal.Decimal `json:"gst"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	merged := *cur
	if body.Description != nil {
		merged.Description = strings.TrimSpace(*body.Description)
	}
	if body.Spec != nil {
		merged.Spec = strings.TrimSpace(*body.Spec)
	}
	if body.Code != nil {
		merged.Code = strings.TrimSpace(*body.Code)
	}
	if body.Category != nil {
		merged.Category = strings.TrimSpace(*body.Category)
	}
	if body.Unit != nil {
		merged.Unit = strings.TrimSpace(*body.Unit)
	}
	if body.Qty != nil {
		merged.Qty = *body.Qty
	}
	if body.Rate != nil {
		merged.Rate = *body.Rate
	}
	if body.Gst != nil {
		merged.Gst = *body.Gst
	}
	if msg := validateLine(merged.Description, &merged.Qty, &merged.Rate, &merged.Gst); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	row, err := h.DeliverableRepo.Update(c.Request().Context(), &merged)
	if err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	h.publishRecompute(c, "deliverable.updated", row)
	return c.JSON(http.StatusOK, echo.Map{"deliverable": &merged, "summary_row": row})
}

// DeleteDeliverable handles DELETE /v1/deliverables/:id. The recomputed
// summary row is returned so the caller immediately sees the totals with
// the line removed.
func (h *EstimateHandler) DeleteDeliverable(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.DeliverableRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	sp, err := h.SpaceRepo.GetByIDAndOwner(c.Request().Context(), cur.SpaceID, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	row, err := h.DeliverableRepo.Delete(c.Request().Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, sp.QuoteID)
	h.publishRecompute(c, "deliverable.deleted", row)
	return c.JSON(http.StatusOK, echo.Map{"summary_row": row})
}

// validateLine enforces the line item write rules: a description plus
// non-negative qty, rate and gst.
func validateLine(description string, qty, rate, gst *decimal.Decimal) string {
	if description == "" {
		return "description is required"
	}
	if qty == nil || rate == nil || gst == nil {
		return "qty, rate and gst are required"
	}
	if qty.IsNegative() || rate.IsNegative() || gst.IsNegative() {
		return "qty, rate and gst must not be negative"
	}
	return ""
}
