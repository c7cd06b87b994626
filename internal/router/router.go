// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/renohq/quote-engine/internal/config"
	"github.com/renohq/quote-engine/internal/handler"
	"github.com/renohq/quote-engine/internal/middleware"
)

// RegisterRoutes wires up the whole API surface. The health check stays
// public; everything under /v1 goes through JWT verification and then the
// rate limiter, in that order so the limiter can key its buckets on the
// authenticated caller. Quote-scoped GET routes additionally pass through
// the handler's response cache, which mutation handlers invalidate per
// quote; with no cache wired those routes are served uncached.
func RegisterRoutes(e *echo.Echo, h *handler.EstimateHandler, jwtSecret string,
	rdb *redis.Client, rlCfg config.RateLimitConfig) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.NewTokenBucket(rlCfg, rdb))

	cached := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if h.Cache != nil {
		cached = h.Cache.Middleware()
	}

	// Quotes
	v1.POST("/quotes", h.CreateQuote)
	v1.GET("/quotes/:id", h.GetQuote, cached)
	v1.DELETE("/quotes/:id", h.DeleteQuote)

	// Spaces of a quote
	v1.POST("/quotes/:id/spaces", h.CreateSpace)
	v1.GET("/quotes/:id/spaces", h.ListSpaces, cached)
	v1.GET("/spaces/:id", h.GetSpace)
	v1.PUT("/spaces/:id", h.UpdateSpace)
	v1.DELETE("/spaces/:id", h.DeleteSpace)

	// Openings of a space
	v1.POST("/spaces/:id/openings", h.CreateOpening)
	v1.GET("/spaces/:id/openings", h.ListOpenings)
	v1.PUT("/openings/:id", h.UpdateOpening)
	v1.DELETE("/openings/:id", h.DeleteOpening)

	// Deliverables of a space
	v1.POST("/spaces/:id/deliverables", h.CreateDeliverable)
	v1.GET("/spaces/:id/deliverables", h.ListDeliverables)
	v1.PUT("/deliverables/:id", h.UpdateDeliverable)
	v1.DELETE("/deliverables/:id", h.DeleteDeliverable)

	// Summary of a quote
	v1.POST("/quotes/:id/summary", h.AddSummaryRows)
	v1.GET("/quotes/:id/summary", h.ListSummary, cached)
	v1.PUT("/quotes/:id/summary/:row_id", h.UpdateSummaryRow)
	v1.DELETE("/quotes/:id/summary/:row_id", h.DeleteSummaryRow)
}
