package handler // handler defines http handlers for the quoting engine

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/renohq/quote-engine/internal/middleware"
	"github.com/renohq/quote-engine/internal/model"
	"github.com/renohq/quote-engine/internal/queue"
	"github.com/renohq/quote-engine/internal/repository"
	queue_publisher "github.com/renohq/quote-engine/internal/service"
)

// EstimateHandler bundles the stores of the estimation engine. One handler
// serves the whole /v1 surface; ownership is enforced per request through
// the repositories' owner-scoped lookups.
type EstimateHandler struct {
	QuoteRepo       *repository.QuoteRepo
	SpaceRepo       *repository.SpaceRepo
	OpeningRepo     *repository.OpeningRepo
	DeliverableRepo *repository.DeliverableRepo
	SummaryRepo     *repository.SummaryRepo
	Cache           *middleware.QuoteCache // nil-safe; may be absent in tests
}

// NewEstimateHandler constructs the handler and panics if any store is nil.
func NewEstimateHandler(quotes *repository.QuoteRepo, spaces *repository.SpaceRepo,
	openings *repository.OpeningRepo, deliverables *repository.DeliverableRepo,
	summaries *repository.SummaryRepo, cache *middleware.QuoteCache) *EstimateHandler {
	if quotes == nil || spaces == nil || openings == nil || deliverables == nil || summaries == nil {
		panic("nil repository passed to NewEstimateHandler")
	}
	return &EstimateHandler{
		QuoteRepo:       quotes,
		SpaceRepo:       spaces,
		OpeningRepo:     openings,
		DeliverableRepo: deliverables,
		SummaryRepo:     summaries,
		Cache:           cache,
	}
}

// getUserID extracts the user_id claim from echo.Context and converts it
// to uint64. JWT claims arrive as float64 or string depending on the
// issuer, so all plausible shapes are handled.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil
}

// respondRepoError maps repository sentinels onto HTTP statuses. Unknown
// errors are reported as a generic 500 so storage details never leak.
func respondRepoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrQuoteNotFound),
		errors.Is(err, repository.ErrSpaceNotFound),
		errors.Is(err, repository.ErrOpeningNotFound),
		errors.Is(err, repository.ErrDeliverableNotFound),
		errors.Is(err, repository.ErrSummaryRowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrStaleRevision):
		return c.JSON(http.StatusConflict, echo.Map{"error": "stale revision, re-read and retry"})
	case errors.Is(err, repository.ErrUnresolvedSpace):
		// Consistency bug: already logged at detection, surface it loudly.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
}

// invalidateQuote drops cached reads for the quote after a committed
// mutation so subsequent reads observe the new totals.
func (h *EstimateHandler) invalidateQuote(c echo.Context, quoteID uint64) {
	h.Cache.Invalidate(c.Request().Context(), quoteID)
}

// publishRecompute notifies downstream consumers that a summary row was
// recomputed. Publishing is best effort: the recompute itself already
// committed, and the publisher logs its own failures.
func (h *EstimateHandler) publishRecompute(c echo.Context, trigger string, row *model.SummaryRow) {
	if row == nil {
		return
	}
	evt := queue.SummaryRecomputedEvent{
		QuoteID:   row.QuoteID,
		RowID:     row.ID,
		SpaceName: row.Space,
		Items:     row.Items,
		Amount:    row.Amount.String(),
		Tax:       row.Tax.String(),
		Total:     row.Total.String(),
		Trigger:   trigger,
	}
	if row.SpaceID != nil {
		evt.SpaceID = *row.SpaceID
	}
	_ = queue_publisher.PublishSummaryRecomputed(c.Request().Context(), evt)
}
