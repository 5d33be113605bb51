package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

func runAuthorize(t *testing.T, p *domain.Principal, required domain.RoleSet) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set(PrincipalKey, p)
	}

	called := false
	handler := Authorize(required)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, called
}

func TestAuthorize_Allows(t *testing.T) {
	admin := &domain.Principal{ID: 1, Username: "root", Role: domain.RoleAdmin}

	code, called := runAuthorize(t, admin, domain.Roles(domain.RoleAdmin, domain.RoleUser))
	if !called || code != http.StatusOK {
		t.Fatalf("expected admin to be admitted, got %d", code)
	}

	code, called = runAuthorize(t, admin, domain.Roles())
	if !called || code != http.StatusOK {
		t.Fatalf("expected any authenticated principal to be admitted, got %d", code)
	}
}

func TestAuthorize_Forbids(t *testing.T) {
	user := &domain.Principal{ID: 2, Username: "alice", Role: domain.RoleUser}

	code, called := runAuthorize(t, user, domain.Roles(domain.RoleAdmin))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestAuthorize_WithoutPrincipal(t *testing.T) {
	code, called := runAuthorize(t, nil, domain.Roles(domain.RoleUser))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
