package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/renohq/quote-engine/internal/estimate"
	"github.com/renohq/quote-engine/internal/model"
)

// CreateQuote handles POST /v1/quotes.
func (h *EstimateHandler) CreateQuote(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	q := &model.Quote{OwnerID: ownerID, Name: name}
	if err := h.QuoteRepo.Create(c.Request().Context(), q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create quote"})
	}
	return c.JSON(http.StatusCreated, q)
}

// GetQuote handles GET /v1/quotes/:id. The response carries the summary
// rows in section order and quote-level totals rolled up from live row
// data on this read; the totals are never cached independently.
func (h *EstimateHandler) GetQuote(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	q, err := h.QuoteRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	rows, err := h.SummaryRepo.ListByQuote(c.Request().Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}
	q.Rows = rows

	rowTotals := make([]estimate.RowTotals, 0, len(rows))
	for _, r := range rows {
		rowTotals = append(rowTotals, estimate.RowTotals{Amount: r.Amount, Tax: r.Tax, Total: r.Total})
	}
	totals := estimate.RollupQuote(rowTotals)
	q.Amount, q.Tax, q.Total = totals.Amount, totals.Tax, totals.Total

	return c.JSON(http.StatusOK, q)
}

// DeleteQuote handles DELETE /v1/quotes/:id, cascading to every space,
// opening, deliverable and summary row of the quote.
func (h *EstimateHandler) DeleteQuote(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.QuoteRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		return respondRepoError(c, err)
	}
	h.invalidateQuote(c, id)
	return c.NoContent(http.StatusNoContent)
}
