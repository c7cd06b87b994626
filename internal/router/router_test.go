package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/renohq/quote-engine/internal/config"
	"github.com/renohq/quote-engine/internal/handler"
	"github.com/renohq/quote-engine/internal/repository"
	"github.com/renohq/quote-engine/internal/router"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	h := handler.NewEstimateHandler(
		repository.NewQuoteRepo(nil),
		repository.NewSpaceRepo(nil),
		repository.NewOpeningRepo(nil),
		repository.NewDeliverableRepo(nil),
		repository.NewSummaryRepo(nil),
		nil, // no cache wired
	)
	e := echo.New()
	// nil redis: the limiter is a no-op and no response cache exists, so
	// every request must reach the JWT check directly.
	router.RegisterRoutes(e, h, "test-secret", nil, config.RateLimitConfig{})
	return e
}

func TestHealthzIsPublic(t *testing.T) {
	e := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want %d", rec.Code, http.StatusOK)
	}
}

// Every /v1 route must be behind the bearer-token check, and serving them
// with no cache and no redis wired must not panic or fall back to a cache
// nothing invalidates.
func TestV1RequiresBearerToken(t *testing.T) {
	e := newTestServer(t)
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/quotes"},
		{http.MethodGet, "/v1/quotes/1"},
		{http.MethodDelete, "/v1/quotes/1"},
		{http.MethodGet, "/v1/quotes/1/summary"},
		{http.MethodPost, "/v1/quotes/1/spaces"},
		{http.MethodGet, "/v1/spaces/1"},
		{http.MethodPut, "/v1/openings/1"},
		{http.MethodDelete, "/v1/deliverables/1"},
	}
	for _, r := range routes {
		req := httptest.NewRequest(r.method, r.path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want %d", r.method, r.path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestV1RejectsGarbageToken(t *testing.T) {
	e := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/quotes/1", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
