package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Custom": {"a", "b"}}
	body := []byte(`{"ok":true}`)
	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decodePayload rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if got := gotHdr.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if len(gotHdr["X-Custom"]) != 2 {
		t.Fatalf("X-Custom = %v, want two values", gotHdr["X-Custom"])
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body = %q, want %q", gotBody, body)
	}
}

func TestDecodePayloadTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Fatalf("accepted malformed payload %v", bs)
		}
	}
}

func newCtx(method, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/tournaments/:id/floor")
	return c
}

func TestCacheKeyStrategies(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	a := cacheKeyFrom(cfg, newCtx(http.MethodGet, "/v1/tournaments/t1/floor?x=1"))
	b := cacheKeyFrom(cfg, newCtx(http.MethodGet, "/v1/tournaments/t1/floor?x=2"))
	if a == b {
		t.Fatal("route_query key ignores the query string")
	}

	cfg.KeyStrategy = "route"
	a = cacheKeyFrom(cfg, newCtx(http.MethodGet, "/v1/tournaments/t1/floor?x=1"))
	b = cacheKeyFrom(cfg, newCtx(http.MethodGet, "/v1/tournaments/t1/floor?x=2"))
	if a != b {
		t.Fatal("route key varies with the query string")
	}

	cfg.KeyStrategy = "method_route"
	a = cacheKeyFrom(cfg, newCtx(http.MethodGet, "/v1/tournaments/t1/floor"))
	b = cacheKeyFrom(cfg, newCtx(http.MethodHead, "/v1/tournaments/t1/floor"))
	if a == b {
		t.Fatal("method_route key ignores the method")
	}
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})
	c := newCtx(http.MethodGet, "/v1/tournaments/t1/floor")
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("disabled cache blocked the handler")
	}
	if got := c.Response().Header().Get("X-Cache"); got != "" {
		t.Fatalf("disabled cache set X-Cache=%q", got)
	}
}
