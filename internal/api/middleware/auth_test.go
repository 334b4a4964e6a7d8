package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/service"
)

func issue(t *testing.T, tokens *service.TokenIssuer, id string, role domain.Role) string {
	t.Helper()
	tok, err := tokens.Issue(&domain.User{ID: id, Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func runAuth(t *testing.T, tokens *service.TokenIssuer, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(tokens)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenIssuer("secret", time.Hour)
	signed := issue(t, tokens, "shop1", domain.RoleShopkeeper)

	called := false
	rec := runAuth(t, tokens, "Bearer "+signed, func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "shop1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(CtxRole) != "shopkeeper" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := runAuth(t, service.NewTokenIssuer("secret", time.Hour), "", mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec := runAuth(t, service.NewTokenIssuer("secret", time.Hour), "Token abc", mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec := runAuth(t, service.NewTokenIssuer("secret", time.Hour), "Bearer not-a-token", mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	other := issue(t, service.NewTokenIssuer("other", time.Hour), "s1", domain.RoleStudent)
	rec := runAuth(t, service.NewTokenIssuer("secret", time.Hour), "Bearer "+other, mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
