package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/repository"
)

// AddSummaryRows handles POST /v1/quotes/:id/summary, appending one or
// more named sections to the quote. The rows start unbound and zeroed;
// creating a space with a matching name later binds it to its row.
func (h *EstimateHandler) AddSummaryRows(c echo.Context) error {
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

	var body struct {
		Rows []struct {
			Space        string `json:"space"`
			WorkPackages uint32 `json:"work_packages"`
		} `json:"rows"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Rows) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows is required"})
	}
	sections := make([]repository.SectionInput, 0, len(body.Rows))
	for _, r := range body.Rows {
		name := strings.TrimSpace(r.Space)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every row needs a space name"})
		}
		sections = append(sections, repository.SectionInput{Space: name, WorkPackages: r.WorkPackages})
	}

	rows, err := h.SummaryRepo.BulkAdd(c.Request().Context(), quoteID, sections)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add summary rows"})
	}
	h.invalidateQuote(c, quoteID)
	return c.JSON(http.StatusCreated, echo.Map{"items": rows})
}

// ListSummary handles GET /v1/quotes/:id/summary, returning the rows in
// section order plus totals rolled up live from those rows.
func (h *EstimateHandler) ListSummary(c echo.Context) error {
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
	rows, err := h.SummaryRepo.ListByQuote(c.Request().Context(), quoteID)
	if err != nil {
		return respondRepoError(c, err)
	}
	rowTotals := make([]estimate.RowTotals, 0, len(rows))
	for _, r := range rows {
		rowTotals = append(rowTotals, estimate.RowTotals{Amount: r.Amount, Tax: r.Tax, Total: r.Total})
	}
	totals := estimate.RollupQuote(rowTotals)
	return c.JSON(http.StatusOK, echo.Map{
		"items":  rows,
		"amount": totals.Amount,
		"tax":    totals.Tax,
		"total":  totals.Total,
	})
}

// UpdateSummaryRow handles PUT /v1/quotes/:id/summary/:row_id. Editing the
// money fields marks the row overridden: deliverable-driven recomputation
// will keep refreshing the item count but leave the manual figures alone.
// Sending "overridden": false lifts the override and re-derives the money
// fields from the space's current deliverables.
func (h *EstimateHandler) UpdateSummaryRow(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rowID, ok := parseID(c, "row_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid row_id"})
	}
	if _, err := h.QuoteRepo.GetByIDAndOwner(c.Request().Context(), quoteID, ownerID); err != nil {
		return respondRepoError(c, err)
	}
	cur, err := h.SummaryRepo.GetByID(c.Request().Context(), quoteID, rowID)
	if err != nil {
		return respondRepoError(c, err)
	}

	var body struct {
		Space        *string          `json:"space"`
		WorkPackages *uint32          `json:"work_packages"`
		Amount       *decimal.Decimal `json:"amount"`
		Tax          *decimal.Decimal `json:"tax"`
		Total        *decimal.Decimal `json:"total"`
		Overridden   *bool            `json:"overridden"`
		Revision     *uint64          `json:"revision"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	moneyTouched := body.Amount != nil || body.Tax != nil || body.Total != nil
	clearing := body.Overridden != nil && !*body.Overridden
	if moneyTouched && clearing {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot set totals while clearing the override"})
	}

	merged := *cur
	if body.Space != nil {
		name := strings.TrimSpace(*body.Space)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "space name cannot be empty"})
		}
		merged.Space = name
	}
	if body.WorkPackages != nil {
		merged.WorkPackages = *body.WorkPackages
	}
	if body.Amount != nil {
		merged.Amount = *body.Amount
	}
	if body.Tax != nil {
		merged.Tax = *body.Tax
	}
	if moneyTouched {
		if body.Total != nil {
			merged.Total = *body.Total
		} else {
			merged.Total = merged.Amount.Add(merged.Tax)
		}
		if merged.Amount.IsNegative() || merged.Tax.IsNegative() || merged.Total.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount, tax and total must not be negative"})
		}
		merged.Overridden = true
	}
	if body.Overridden != nil {
		merged.Overridden = *body.Overridden
	}

	expectedRev := cur.Revision
	if body.Revision != nil {
		expectedRev = *body.Revision
	}
	if err := h.SummaryRepo.Update(c.Request().Context(), &merged, expectedRev, clearing); err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, quoteID)
	h.publishRecompute(c, "summary.edited", &merged)
	return c.JSON(http.StatusOK, &merged)
}

// DeleteSummaryRow handles DELETE /v1/quotes/:id/summary/:row_id.
func (h *EstimateHandler) DeleteSummaryRow(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rowID, ok := parseID(c, "row_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid row_id"})
	}
	if _, err := h.QuoteRepo.GetByIDAndOwner(c.Request().Context(), quoteID, ownerID); err != nil {
		return respondRepoError(c, err)
	}
	if err := h.SummaryRepo.Delete(c.Request().Context(), quoteID, rowID); err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, quoteID)
	return c.NoContent(http.StatusNoContent)
}
