package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

type stubCartService struct {
	addItemFn      func(ctx context.Context, p domain.Product, qty int) error
	applyVoucherFn func(ctx context.Context, code string) (bool, error)
	view           domain.CartView
}

func (s *stubCartService) AddItem(ctx context.Context, p domain.Product, qty int) error {
	return s.addItemFn(ctx, p, qty)
}
func (s *stubCartService) RemoveItem(context.Context, string) error          { return nil }
func (s *stubCartService) UpdateQuantity(context.Context, string, int) error { return nil }
func (s *stubCartService) ClearCart(context.Context) error                   { return nil }
func (s *stubCartService) ApplyVoucher(ctx context.Context, code string) (bool, error) {
	return s.applyVoucherFn(ctx, code)
}
func (s *stubCartService) RemoveVoucher(context.Context) error { return nil }
func (s *stubCartService) Snapshot() domain.CartView            { return s.view }

type stubSessionService struct {
	loginFn   func(ctx context.Context, username, password string) (*domain.LoginResult, error)
	current   *domain.Session
	loggedOut bool
}

func (s *stubSessionService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}
func (s *stubSessionService) Register(context.Context, ports.RegisterInput) (string, error) {
	return "ok", nil
}
func (s *stubSessionService) Logout(context.Context) { s.loggedOut = true }
func (s *stubSessionService) GetCurrentProfile(context.Context) (*domain.Session, error) {
	return nil, domain.ErrNotLoggedIn
}
func (s *stubSessionService) ChangePassword(context.Context, string, string) error { return nil }
func (s *stubSessionService) UpdateUser(context.Context, string, ports.ProfileUpdate) (*domain.Profile, error) {
	return nil, nil
}
func (s *stubSessionService) FetchUserDetails(context.Context, string) (*domain.Profile, error) {
	return nil, nil
}
func (s *stubSessionService) CurrentUser() (*domain.Session, bool) {
	return s.current, s.current != nil
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCartHandler_AddItem_Success(t *testing.T) {
	stub := &stubCartService{
		addItemFn: func(_ context.Context, p domain.Product, qty int) error {
			if p.ID != "tyre-1" || qty != 2 || !p.Price.Equal(decimal.RequireFromString("99.5")) {
				t.Fatalf("unexpected args: %+v qty=%d", p, qty)
			}
			return nil
		},
		view: domain.CartView{
			Items:     []domain.CartLine{{ProductID: "tyre-1", UnitPrice: decimal.RequireFromString("99.5"), Quantity: 2}},
			ItemCount: 2,
			Subtotal:  decimal.RequireFromString("199"),
			Total:     decimal.RequireFromString("199"),
		},
	}
	h := NewCartHandler(stub)

	c, rec := newContext(http.MethodPost, "/cart/items", `{"product_id":"tyre-1","price":"99.5","quantity":2}`)
	if err := h.AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != "199.00" || resp.ItemCount != 2 || len(resp.Items) != 1 {
		t.Fatalf("unexpected cart payload: %+v", resp)
	}
	if resp.Items[0].LineTotal != "199.00" {
		t.Fatalf("unexpected line total %s", resp.Items[0].LineTotal)
	}
}

func TestCartHandler_AddItem_Validation(t *testing.T) {
	h := NewCartHandler(&stubCartService{
		addItemFn: func(context.Context, domain.Product, int) error {
			t.Fatalf("service should not be called")
			return nil
		},
	})

	c, _ := newContext(http.MethodPost, "/cart/items", `{"product_id":"","quantity":0}`)
	err := h.AddItem(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCartHandler_ApplyVoucher_Unknown(t *testing.T) {
	h := NewCartHandler(&stubCartService{
		applyVoucherFn: func(_ context.Context, code string) (bool, error) { return false, nil },
	})

	c, _ := newContext(http.MethodPost, "/cart/voucher", `{"code":"BOGUS"}`)
	err := h.ApplyVoucher(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 http error, got %v", err)
	}
}

func TestSessionHandler_Login_Success(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(_ context.Context, username, password string) (*domain.LoginResult, error) {
			if username != "root" || password != "pw" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.LoginResult{
				Session:    &domain.Session{Username: "root", Token: "tok", Role: domain.RoleAdmin},
				RedirectTo: "/admin/users",
			}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, rec := newContext(http.MethodPost, "/session/login", `{"username":"root","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Fatalf("token leaked in response: %s", rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.RedirectTo != "/admin/users" || resp.Session.Role != domain.RoleAdmin {
		t.Fatalf("unexpected login payload: %+v", resp)
	}
}

func TestSessionHandler_Login_PropagatesRemoteError(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(context.Context, string, string) (*domain.LoginResult, error) {
			return nil, domain.ErrMissingToken
		},
	}
	h := NewSessionHandler(stub)

	c, _ := newContext(http.MethodPost, "/session/login", `{"username":"a","password":"b"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestSessionHandler_CurrentAndLogout(t *testing.T) {
	stub := &stubSessionService{}
	h := NewSessionHandler(stub)

	c, _ := newContext(http.MethodGet, "/session", "")
	if err := h.Current(c); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	c, rec := newContext(http.MethodPost, "/session/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || !stub.loggedOut {
		t.Fatalf("expected 204 and logout, got %d %v", rec.Code, stub.loggedOut)
	}
}

type stubResolver struct{}

func (stubResolver) Resolve(path string) (domain.RouteMeta, domain.Decision) {
	return domain.RouteMeta{Path: path}, domain.RedirectTo("/")
}

func TestPageHandler_FallbackRedirectsHome(t *testing.T) {
	h := NewPageHandler(stubResolver{}, "/app")

	c, rec := newContext(http.MethodGet, "/app/nowhere", "")
	c.SetParamNames("*")
	c.SetParamValues("nowhere")

	if err := h.Fallback(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/app/" {
		t.Fatalf("unexpected redirect %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
