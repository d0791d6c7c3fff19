package userapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

type account struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	Surname      string
	Email        string
	PhoneNumber  string
	Role         domain.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *account) profile() *domain.Profile {
	return &domain.Profile{
		UserID:      a.ID,
		Username:    a.Username,
		Name:        a.Name,
		Surname:     a.Surname,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		Role:        a.Role.String(),
	}
}

// Memory is an offline user service with bcrypt passwords and HS256 tokens.
// Like the HTTP client it reads the caller's token from the shared store.
type Memory struct {
	tokens    ports.KeyValueStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger

	mu         sync.RWMutex
	byUsername map[string]*account
	byID       map[string]*account
}

func NewMemory(jwtSecret string, tokenTTL time.Duration, tokens ports.KeyValueStore, log zerolog.Logger) *Memory {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Memory{
		tokens:     tokens,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
		byUsername: make(map[string]*account),
		byID:       make(map[string]*account),
	}
}

// Seed creates an account with the given role, typically the first admin.
func (m *Memory) Seed(username, password string, role domain.Role) error {
	_, err := m.create(ports.RegisterInput{Username: username, Password: password}, role)
	return err
}

func (m *Memory) Register(_ context.Context, in ports.RegisterInput) (string, error) {
	if _, err := m.create(in, domain.RoleCustomer); err != nil {
		return "", err
	}
	return "User registered successfully", nil
}

func (m *Memory) create(in ports.RegisterInput, role domain.Role) (*account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, remoteFailure("register", http.StatusBadRequest, "Username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[username]; exists {
		return nil, remoteFailure("register", http.StatusConflict, "Username already exists")
	}

	now := time.Now().UTC()
	a := &account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byUsername[a.Username] = a
	m.byID[a.ID] = a
	m.log.Debug().Str("username", a.Username).Str("role", a.Role.String()).Msg("account created")
	return a, nil
}

func (m *Memory) Login(_ context.Context, creds ports.Credentials) (*ports.LoginResponse, error) {
	m.mu.RLock()
	a, ok := m.byUsername[strings.TrimSpace(creds.Username)]
	m.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(creds.Password)) != nil {
		return nil, remoteFailure("login", http.StatusUnauthorized, "Invalid username or password")
	}

	token, err := m.generateToken(a)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.LoginResponse{Token: token, UserID: a.ID}, nil
}

func (m *Memory) GetProfile(ctx context.Context) (*domain.Profile, error) {
	a, err := m.caller(ctx, "get profile")
	if err != nil {
		return nil, err
	}
	return a.profile(), nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byUsername[username]
	if !ok {
		return nil, remoteFailure("get user by username", http.StatusNotFound, "User not found")
	}
	return a.profile(), nil
}

func (m *Memory) UpdateUser(ctx context.Context, userID string, in ports.ProfileUpdate) (*domain.Profile, error) {
	if err := m.authorize(ctx, "update user", userID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[userID]
	if !ok {
		return nil, remoteFailure("update user", http.StatusNotFound, "User not found")
	}
	if in.Username != "" && in.Username != a.Username {
		if _, taken := m.byUsername[in.Username]; taken {
			return nil, remoteFailure("update user", http.StatusConflict, "Username already exists")
		}
		delete(m.byUsername, a.Username)
		a.Username = in.Username
		m.byUsername[a.Username] = a
	}
	if in.Name != "" {
		a.Name = in.Name
	}
	if in.Surname != "" {
		a.Surname = in.Surname
	}
	if in.Email != "" {
		a.Email = in.Email
	}
	if in.PhoneNumber != "" {
		a.PhoneNumber = in.PhoneNumber
	}
	a.UpdatedAt = time.Now().UTC()
	return a.profile(), nil
}

func (m *Memory) ChangePassword(ctx context.Context, userID string, in ports.PasswordChange) (string, error) {
	if err := m.authorize(ctx, "change password", userID); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[userID]
	if !ok {
		return "", remoteFailure("change password", http.StatusNotFound, "User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return "", remoteFailure("change password", http.StatusBadRequest, "Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = string(hash)
	a.UpdatedAt = time.Now().UTC()
	return "Password changed successfully", nil
}

// authorize allows the account owner and admins.
func (m *Memory) authorize(ctx context.Context, op, userID string) error {
	a, err := m.caller(ctx, op)
	if err != nil {
		return err
	}
	if a.ID != userID && !a.Role.IsAdmin() {
		return remoteFailure(op, http.StatusForbidden, "Access denied")
	}
	return nil
}

// caller resolves the account behind the stored bearer token.
func (m *Memory) caller(ctx context.Context, op string) (*account, error) {
	raw, ok, err := m.tokens.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return nil, domain.NewRemoteError(op, 0, nil, err, "Failed to read token")
	}
	if !ok || raw == "" {
		return nil, remoteFailure(op, http.StatusUnauthorized, "Unauthorized")
	}

	claims, err := m.parseToken(raw)
	if err != nil {
		return nil, remoteFailure(op, http.StatusUnauthorized, "Invalid or expired token")
	}
	id, _ := claims["userId"].(string)

	m.mu.RLock()
	defer m.mu.RUnlock()
	a, found := m.byID[id]
	if !found {
		return nil, remoteFailure(op, http.StatusUnauthorized, "Unauthorized")
	}
	return a, nil
}

func (m *Memory) generateToken(a *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":    a.Username,
		"userId": a.ID,
		"role":   a.Role.String(),
		"exp":    time.Now().Add(m.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(m.jwtSecret))
}

func (m *Memory) parseToken(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func remoteFailure(op string, status int, message string) *domain.RemoteError {
	return &domain.RemoteError{Op: op, Status: status, Message: message}
}
