package ports

import (
	"context"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

// Credentials is the login request payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is what the remote API returns on login. UserID is optional.
type LoginResponse struct {
	Token  string
	UserID string
}

// RegisterInput carries the account fields a customer submits. The role is
// assigned by the server and never sent.
type RegisterInput struct {
	Name            string `json:"name"            validate:"required"`
	Surname         string `json:"surname"         validate:"required"`
	Username        string `json:"username"        validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber"     validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Username    string `json:"username,omitempty"`
	Name        string `json:"name,omitempty"`
	Surname     string `json:"surname,omitempty"`
	Email       string `json:"email,omitempty"       validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// PasswordChange is the change-password request payload.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required"`
}

// UserAPI is the remote user service the session store talks to. A bearer
// credential is attached by the implementation when one is stored.
type UserAPI interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
	GetProfile(ctx context.Context) (*domain.Profile, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.Profile, error)
	UpdateUser(ctx context.Context, userID string, in ProfileUpdate) (*domain.Profile, error)
	ChangePassword(ctx context.Context, userID string, in PasswordChange) (string, error)
}
