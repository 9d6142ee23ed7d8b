package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/config"
)

func TestRequestCost(t *testing.T) {
	cfg := config.RateLimitConfig{WriteCost: 5}
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		if got := requestCost(cfg, method); got != 1 {
			t.Fatalf("%s cost = %d, want 1", method, got)
		}
	}
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		if got := requestCost(cfg, method); got != 5 {
			t.Fatalf("%s cost = %d, want 5", method, got)
		}
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	c := newCtx(http.MethodPost, "/v1/tournaments/t1/seats")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	c.Set("user_id", "u1")

	cases := []struct {
		strategy string
		want     string
	}{
		{"user", "pp:rl:user:u1"},
		{"tournament", "pp:rl:tournament:t1"},
		{"user_tournament", "pp:rl:user:u1:tournament:t1"},
	}
	for _, tc := range cases {
		cfg := config.RateLimitConfig{Prefix: "pp:rl", KeyStrategy: tc.strategy}
		if got := buildRateKey(cfg, c); got != tc.want {
			t.Fatalf("strategy %s: key = %q, want %q", tc.strategy, got, tc.want)
		}
	}

	cfg := config.RateLimitConfig{Prefix: "pp:rl", KeyStrategy: "user_route"}
	key := buildRateKey(cfg, c)
	if want := "pp:rl:user:u1:route:POST /v1/tournaments/:id/floor"; key != want {
		t.Fatalf("user_route key = %q, want %q", key, want)
	}
}

func TestBuildRateKeyAnonymousAndGlobal(t *testing.T) {
	c := newCtx(http.MethodGet, "/v1/healthz")

	cfg := config.RateLimitConfig{Prefix: "pp:rl", KeyStrategy: "user"}
	if got := buildRateKey(cfg, c); got != "pp:rl:user:anon" {
		t.Fatalf("unauthenticated key = %q", got)
	}

	cfg.KeyStrategy = "tournament"
	if got := buildRateKey(cfg, c); got != "pp:rl:tournament:global" {
		t.Fatalf("non-tournament route key = %q", got)
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(newCtx(http.MethodPost, "/v1/tournaments/t1/seats")); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("disabled limiter blocked the handler")
	}
}
