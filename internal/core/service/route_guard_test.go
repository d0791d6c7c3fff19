package service

import (
	"testing"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

type stubSession struct {
	authenticated bool
	admin         bool
}

func (s stubSession) IsAuthenticated() bool { return s.authenticated }
func (s stubSession) IsAdmin() bool         { return s.admin }

func TestRouteGuard_Decide(t *testing.T) {
	anonymous := stubSession{}
	customer := stubSession{authenticated: true}
	admin := stubSession{authenticated: true, admin: true}

	adminRoute := domain.RouteMeta{Path: "/admin/users", RequiresAdmin: true}
	authRoute := domain.RouteMeta{Path: "/profile", RequiresAuth: true}
	openRoute := domain.RouteMeta{Path: "/products"}

	tests := []struct {
		name    string
		session stubSession
		meta    domain.RouteMeta
		want    domain.Decision
	}{
		{"admin route anonymous", anonymous, adminRoute, domain.RedirectTo("/login")},
		{"admin route customer", customer, adminRoute, domain.RedirectTo("/")},
		{"admin route admin", admin, adminRoute, domain.Allow()},
		{"auth route anonymous", anonymous, authRoute, domain.RedirectTo("/login")},
		{"auth route customer", customer, authRoute, domain.Allow()},
		{"auth route admin", admin, authRoute, domain.Allow()},
		{"open route anonymous", anonymous, openRoute, domain.Allow()},
		{"open route customer", customer, openRoute, domain.Allow()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewRouteGuard(tc.session, "/login", "/")
			if got := g.Decide(tc.meta); got != tc.want {
				t.Fatalf("Decide() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRouteGuard_Resolve(t *testing.T) {
	g := NewRouteGuard(stubSession{}, "", "")

	meta, d := g.Resolve("/profile/orders")
	if meta.Name != "orders" {
		t.Fatalf("expected orders route, got %q", meta.Name)
	}
	if d.Allow || d.RedirectTo != domain.PathLogin {
		t.Fatalf("child route should inherit auth, got %+v", d)
	}

	if _, d := g.Resolve("/no/such/page"); d.RedirectTo != domain.PathHome {
		t.Fatalf("unknown path should go home, got %+v", d)
	}

	if _, d := g.Resolve("/cart/"); !d.Allow {
		t.Fatalf("expected /cart/ to be allowed, got %+v", d)
	}
}

func TestRouteGuard_ReadsLiveSession(t *testing.T) {
	api := &stubUserAPI{}
	svc, store := newTestSession(api)
	g := NewRouteGuard(svc, domain.PathLogin, domain.PathHome)
	adminRoute := domain.RouteMeta{RequiresAdmin: true}

	if d := g.Decide(adminRoute); d.RedirectTo != domain.PathLogin {
		t.Fatalf("expected login redirect, got %+v", d)
	}

	store.data["authToken"] = "tok"
	store.data["user"] = `{"username":"root","role":"ADMIN"}`
	if err := svc.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if d := g.Decide(adminRoute); !d.Allow {
		t.Fatalf("expected admin to be allowed, got %+v", d)
	}
}
