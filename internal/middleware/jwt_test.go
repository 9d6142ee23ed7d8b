package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/utils"
)

func authCtx(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	const secret = "test-secret"
	at, err := utils.NewAccessToken(secret, "user-123", "manager", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	c, _ := authCtx("Bearer " + at.Token)
	var uid, role interface{}
	h := JWTAuth(secret)(func(c echo.Context) error {
		uid = c.Get("user_id")
		role = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if uid != "user-123" || role != "manager" {
		t.Fatalf("context carries user_id=%v role=%v", uid, role)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	const secret = "test-secret"
	other, err := utils.NewAccessToken("other-secret", "user-123", "player", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + other.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := authCtx(tc.header)
			h := JWTAuth(secret)(func(c echo.Context) error {
				t.Fatal("handler reached without valid token")
				return nil
			})
			if err := h(c); err != nil {
				t.Fatalf("middleware: %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role interface{}) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/clubs", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := RequireRole("manager", "admin")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err := h(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		return rec.Code
	}
	if got := run("admin"); got != http.StatusOK {
		t.Fatalf("admin blocked with %d", got)
	}
	if got := run("manager"); got != http.StatusOK {
		t.Fatalf("manager blocked with %d", got)
	}
	if got := run("player"); got != http.StatusForbidden {
		t.Fatalf("player allowed with %d", got)
	}
	if got := run(nil); got != http.StatusForbidden {
		t.Fatalf("missing role allowed with %d", got)
	}
}
