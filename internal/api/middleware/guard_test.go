package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

type stubDecider struct {
	decision domain.Decision
	seen     domain.RouteMeta
}

func (s *stubDecider) Decide(meta domain.RouteMeta) domain.Decision {
	s.seen = meta
	return s.decision
}

func TestGuard_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/app/admin/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	meta := domain.RouteMeta{Name: "admin-users", Path: "/admin/users", RequiresAdmin: true}
	decider := &stubDecider{decision: domain.Allow()}

	called := false
	handler := Guard(decider, meta, "/app")(func(c echo.Context) error {
		called = true
		if got, _ := c.Get("route").(domain.RouteMeta); got.Name != "admin-users" {
			t.Fatalf("route not set on context: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if decider.seen != meta {
		t.Fatalf("decider saw %+v", decider.seen)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_Redirects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/app/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	decider := &stubDecider{decision: domain.RedirectTo("/login")}
	handler := Guard(decider, domain.RouteMeta{Path: "/profile", RequiresAuth: true}, "/app")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/app/login" {
		t.Fatalf("unexpected location %q", loc)
	}
}
