package service

import (
	"context"
	"errors"
	"sync"

	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet map[string]error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string), failSet: make(map[string]error)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failSet[key]; err != nil {
		return err
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memStore) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

var errStubNotConfigured = errors.New("stub: not configured")

type stubUserAPI struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (string, error)
	loginFn          func(ctx context.Context, creds ports.Credentials) (*ports.LoginResponse, error)
	getProfileFn     func(ctx context.Context) (*domain.Profile, error)
	byUsernameFn     func(ctx context.Context, username string) (*domain.Profile, error)
	updateUserFn     func(ctx context.Context, userID string, in ports.ProfileUpdate) (*domain.Profile, error)
	changePasswordFn func(ctx context.Context, userID string, in ports.PasswordChange) (string, error)

	loginCalls int
}

func (s *stubUserAPI) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	if s.registerFn == nil {
		return "", errStubNotConfigured
	}
	return s.registerFn(ctx, in)
}

func (s *stubUserAPI) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResponse, error) {
	s.loginCalls++
	if s.loginFn == nil {
		return nil, errStubNotConfigured
	}
	return s.loginFn(ctx, creds)
}

func (s *stubUserAPI) GetProfile(ctx context.Context) (*domain.Profile, error) {
	if s.getProfileFn == nil {
		return nil, errStubNotConfigured
	}
	return s.getProfileFn(ctx)
}

func (s *stubUserAPI) GetUserByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	if s.byUsernameFn == nil {
		return nil, errStubNotConfigured
	}
	return s.byUsernameFn(ctx, username)
}

func (s *stubUserAPI) UpdateUser(ctx context.Context, userID string, in ports.ProfileUpdate) (*domain.Profile, error) {
	if s.updateUserFn == nil {
		return nil, errStubNotConfigured
	}
	return s.updateUserFn(ctx, userID, in)
}

func (s *stubUserAPI) ChangePassword(ctx context.Context, userID string, in ports.PasswordChange) (string, error) {
	if s.changePasswordFn == nil {
		return "", errStubNotConfigured
	}
	return s.changePasswordFn(ctx, userID, in)
}
