package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

// --- Cart ---

type addItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"   validate:"required,gt=0"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type voucherRequest struct {
	Code string `json:"code" validate:"required"`
}

type cartLineResponse struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal string    `json:"line_total"`
	AddedAt   time.Time `json:"added_at"`
}

type cartResponse struct {
	Items     []cartLineResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  string             `json:"subtotal"`
	Discount  string             `json:"discount"`
	Total     string             `json:"total"`
	Voucher   string             `json:"voucher,omitempty"`
}

// --- Session ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updateUserRequest struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type profileResponse struct {
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username"`
	Name        string `json:"name,omitempty"`
	Surname     string `json:"surname,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role,omitempty"`
}

type sessionResponse struct {
	UserID       string           `json:"user_id,omitempty"`
	Username     string           `json:"username"`
	Role         domain.Role      `json:"role"`
	Profile      *profileResponse `json:"profile,omitempty"`
	RedirectPath string           `json:"redirect_path,omitempty"`
}

type loginResponse struct {
	Session    sessionResponse `json:"session"`
	RedirectTo string          `json:"redirect_to"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Pages ---

type pageResponse struct {
	Route         string `json:"route"`
	Path          string `json:"path"`
	RequiresAuth  bool   `json:"requires_auth,omitempty"`
	RequiresAdmin bool   `json:"requires_admin,omitempty"`
}
