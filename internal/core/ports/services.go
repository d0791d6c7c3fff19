package ports

import (
	"context"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

// CartService defines the cart use cases.
type CartService interface {
	AddItem(ctx context.Context, product domain.Product, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	ClearCart(ctx context.Context) error
	ApplyVoucher(ctx context.Context, code string) (bool, error)
	RemoveVoucher(ctx context.Context) error
	Snapshot() domain.CartView
}

// SessionService defines the authentication use cases.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (string, error)
	Logout(ctx context.Context)
	GetCurrentProfile(ctx context.Context) (*domain.Session, error)
	ChangePassword(ctx context.Context, current, next string) error
	UpdateUser(ctx context.Context, userID string, in ProfileUpdate) (*domain.Profile, error)
	FetchUserDetails(ctx context.Context, username string) (*domain.Profile, error)
	CurrentUser() (*domain.Session, bool)
}
