package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/renohq/quote-engine/internal/config"
)

func newKeyContext(t *testing.T, path string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c
}

// The default strategy keys buckets per authenticated caller, so the
// limiter must run after the JWT middleware has set user_id. This pins
// down that an authenticated request actually carries its user segment.
func TestBuildRateKeyUsesAuthenticatedUser(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	c := newKeyContext(t, "/v1/quotes/:id")
	c.Set("user_id", float64(42))

	key := buildRateKey(cfg, c)
	if !strings.Contains(key, ":user:42:") {
		t.Errorf("key %q does not contain the user segment", key)
	}
	if !strings.Contains(key, ":route:/v1/quotes/:id") {
		t.Errorf("key %q does not contain the route segment", key)
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	tests := []struct {
		strategy string
		userSet  bool
		want     []string
		wantNot  []string
	}{
		{"ip", false, []string{"rl:ip:"}, []string{":user:", ":route:"}},
		{"ip_route", false, []string{"rl:ip:", ":route:/v1/quotes/:id"}, []string{":user:"}},
		{"ip_user_route", true, []string{":user:7:", ":route:/v1/quotes/:id"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.strategy, func(t *testing.T) {
			cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}
			c := newKeyContext(t, "/v1/quotes/:id")
			if tc.userSet {
				c.Set("user_id", "7")
			}
			key := buildRateKey(cfg, c)
			for _, frag := range tc.want {
				if !strings.Contains(key, frag) {
					t.Errorf("strategy %s: key %q missing %q", tc.strategy, key, frag)
				}
			}
			for _, frag := range tc.wantNot {
				if strings.Contains(key, frag) {
					t.Errorf("strategy %s: key %q should not contain %q", tc.strategy, key, frag)
				}
			}
		})
	}
}
