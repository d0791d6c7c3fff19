package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
	"github.com/tymelesstyre/storefront/internal/pkg/validation"
)

// profileStrategy is one way of obtaining the user record after login.
type profileStrategy struct {
	name  string
	fetch func(ctx context.Context, username string) (*domain.Profile, error)
}

// SessionService is the client's authentication state machine. It owns the
// session record and the persisted user, authToken and userId keys.
type SessionService struct {
	api   ports.UserAPI
	store ports.KeyValueStore
	log   zerolog.Logger

	adminHome   string
	defaultHome string
	strategies  []profileStrategy

	mu      sync.Mutex
	state   domain.SessionState
	session *domain.Session

	changes broadcaster
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithRedirects sets where a successful login lands for admins and everyone else.
func WithRedirects(adminHome, defaultHome string) SessionOption {
	return func(s *SessionService) {
		if adminHome != "" {
			s.adminHome = adminHome
		}
		if defaultHome != "" {
			s.defaultHome = defaultHome
		}
	}
}

func NewSessionService(api ports.UserAPI, store ports.KeyValueStore, log zerolog.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		api:         api,
		store:       store,
		log:         log,
		adminHome:   domain.PathAdminHome,
		defaultHome: domain.PathHome,
		state:       domain.StateAnonymous,
	}
	s.strategies = []profileStrategy{
		{name: "profile", fetch: func(ctx context.Context, _ string) (*domain.Profile, error) {
			return s.api.GetProfile(ctx)
		}},
		{name: "by_username", fetch: func(ctx context.Context, username string) (*domain.Profile, error) {
			return s.api.GetUserByUsername(ctx, username)
		}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rebuilds the session from storage. Only a stored token makes the
// session authenticated; an unreadable user record is ignored.
func (s *SessionService) Restore(ctx context.Context) error {
	token, _, err := s.store.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	userID, _, err := s.store.Get(ctx, ports.KeyUserID)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	var restored *domain.Session
	if token != "" {
		var stored domain.Session
		if _, err := loadJSON(ctx, s.store, ports.KeyUser, &stored); err != nil {
			s.log.Warn().Err(err).Msg("stored user record unreadable, ignoring")
			stored = domain.Session{}
		}
		stored.Token = token
		if userID != "" {
			stored.UserID = userID
		}
		if stored.Role == "" {
			stored.Role = domain.RoleCustomer
		} else {
			stored.Role = domain.NormalizeRole(string(stored.Role))
		}
		restored = &stored
	}

	s.mu.Lock()
	s.session = restored
	s.state = domain.StateAnonymous
	if restored != nil {
		s.state = domain.StateAuthenticated
	}
	s.mu.Unlock()

	s.changes.notify()
	return nil
}

// State reports the current lifecycle state.
func (s *SessionService) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login authenticates against the remote API and establishes the session.
// Any failure leaves the client anonymous with no credential persisted.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	creds := ports.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := validation.Struct(creds); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	// 1. Enter the authenticating state.
	s.mu.Lock()
	s.state = domain.StateAuthenticating
	s.mu.Unlock()
	s.changes.notify()

	// 2. Exchange credentials for a token.
	resp, err := s.api.Login(ctx, creds)
	if err == nil && (resp == nil || strings.TrimSpace(resp.Token) == "") {
		err = domain.ErrMissingToken
	}
	if err != nil {
		s.abortLogin(ctx, creds.Username, err)
		return nil, fmt.Errorf("login: %w", err)
	}
	token := strings.TrimSpace(resp.Token)

	// 3. Persist the credential before anything that needs it.
	if err := s.store.Set(ctx, ports.KeyAuthToken, token); err != nil {
		s.abortLogin(ctx, creds.Username, err)
		return nil, fmt.Errorf("login: %w", err)
	}

	// 4. Enrich with the profile; never fails the login.
	profile := s.resolveProfile(ctx, creds.Username)

	session := &domain.Session{
		Username: creds.Username,
		Token:    token,
		Role:     domain.RoleCustomer,
	}
	session.ApplyProfile(profile)

	// The login response wins, then the profile, then the token claims.
	userID := strings.TrimSpace(resp.UserID)
	if userID == "" {
		userID = strings.TrimSpace(profile.UserID)
	}
	if userID == "" {
		userID = userIDFromToken(token)
	}
	session.UserID = userID
	if userID != "" {
		if err := s.store.Set(ctx, ports.KeyUserID, userID); err != nil {
			s.abortLogin(ctx, creds.Username, err)
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	redirect := s.defaultHome
	if session.Role.IsAdmin() {
		redirect = s.adminHome
	}
	session.RedirectPath = redirect

	// 5. Persist the record and publish.
	s.mu.Lock()
	if err := s.saveUser(ctx, session); err != nil {
		s.mu.Unlock()
		s.abortLogin(ctx, creds.Username, err)
		return nil, fmt.Errorf("login: %w", err)
	}
	s.session = session
	s.state = domain.StateAuthenticated
	snapshot := session.Clone()
	s.mu.Unlock()

	s.log.Info().Str("username", session.Username).Str("role", session.Role.String()).Msg("logged in")
	s.changes.notify()

	return &domain.LoginResult{Session: snapshot, RedirectTo: redirect}, nil
}

// resolveProfile tries each strategy in order and falls back to a record
// holding only the username.
func (s *SessionService) resolveProfile(ctx context.Context, username string) domain.Profile {
	for _, st := range s.strategies {
		p, err := st.fetch(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("strategy", st.name).Str("username", username).Msg("profile lookup failed")
			continue
		}
		if p == nil {
			s.log.Warn().Str("strategy", st.name).Str("username", username).Msg("profile lookup returned nothing")
			continue
		}
		return *p
	}
	return domain.Profile{Username: username}
}

func (s *SessionService) abortLogin(ctx context.Context, username string, cause error) {
	s.clearPersisted(ctx)

	s.mu.Lock()
	s.session = nil
	s.state = domain.StateAnonymous
	s.mu.Unlock()

	s.log.Warn().Err(cause).Str("username", username).Msg("login failed")
	s.changes.notify()
}

// Register submits a new customer account. The session is not touched.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return "", err
	}

	msg, err := s.api.Register(ctx, in)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	s.log.Info().Str("username", in.Username).Msg("account registered")
	return msg, nil
}

// Logout forgets the session. It never fails and is safe to repeat.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.clearPersisted(ctx)
	username := ""
	if s.session != nil {
		username = s.session.Username
	}
	s.session = nil
	s.state = domain.StateAnonymous
	s.mu.Unlock()

	s.log.Info().Str("username", username).Msg("logged out")
	s.changes.notify()
}

func (s *SessionService) clearPersisted(ctx context.Context) {
	for _, key := range []string{ports.KeyAuthToken, ports.KeyUserID, ports.KeyUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to remove session key")
		}
	}
}

// GetCurrentProfile refreshes the session from the remote profile.
func (s *SessionService) GetCurrentProfile(ctx context.Context) (*domain.Session, error) {
	if !s.IsAuthenticated() {
		return nil, domain.ErrNotLoggedIn
	}

	p, err := s.api.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("get current profile: %w", err)
	}
	if p == nil {
		return nil, &domain.RemoteError{Op: "get current profile", Message: "empty profile response"}
	}

	return s.applyProfile(ctx, *p, "get current profile")
}

func (s *SessionService) applyProfile(ctx context.Context, p domain.Profile, op string) (*domain.Session, error) {
	s.mu.Lock()
	if !s.session.Authenticated() {
		s.mu.Unlock()
		return nil, domain.ErrNotLoggedIn
	}
	next := s.session.Clone()
	next.ApplyProfile(p)
	if err := s.saveUser(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.session = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.changes.notify()
	return snapshot, nil
}

// ChangePassword changes the signed-in user's password.
func (s *SessionService) ChangePassword(ctx context.Context, current, next string) error {
	s.mu.Lock()
	var userID string
	if s.session.Authenticated() {
		userID = s.session.UserID
	}
	s.mu.Unlock()
	if userID == "" {
		return domain.ErrNotLoggedIn
	}

	in := ports.PasswordChange{CurrentPassword: current, NewPassword: next}
	if err := validation.Struct(in); err != nil {
		return err
	}

	msg, err := s.api.ChangePassword(ctx, userID, in)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("response", msg).Msg("password changed")
	return nil
}

// UpdateUser updates a user's profile. When the updated user is the signed-in
// one, the session picks up the new fields.
func (s *SessionService) UpdateUser(ctx context.Context, userID string, in ports.ProfileUpdate) (*domain.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateUser(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if updated == nil {
		return nil, &domain.RemoteError{Op: "update user", Message: "empty update response"}
	}

	s.mu.Lock()
	own := s.session.Authenticated() && updated.Username != "" && updated.Username == s.session.Username
	s.mu.Unlock()
	if own {
		if _, err := s.applyProfile(ctx, *updated, "update user"); err != nil {
			return nil, err
		}
	}

	out := *updated
	return &out, nil
}

// FetchUserDetails returns the profile for username. The signed-in user's own
// record is refreshed into the session on the way.
func (s *SessionService) FetchUserDetails(ctx context.Context, username string) (*domain.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	s.mu.Lock()
	own := s.session.Authenticated() && s.session.Username == username
	s.mu.Unlock()

	if own {
		session, err := s.GetCurrentProfile(ctx)
		if err != nil {
			return nil, err
		}
		p := *session.Profile
		return &p, nil
	}

	p, err := s.api.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch user details: %w", err)
	}
	if p == nil {
		return nil, &domain.RemoteError{Op: "fetch user details", Message: "user not found"}
	}
	return p, nil
}

// CurrentUser returns a snapshot of the session, if any.
func (s *SessionService) CurrentUser() (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.Authenticated() {
		return nil, false
	}
	return s.session.Clone(), true
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Authenticated()
}

func (s *SessionService) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Authenticated() && s.session.Role.IsAdmin()
}

func (s *SessionService) IsCustomer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Authenticated() && s.session.Role.IsCustomer()
}

// Subscribe registers fn to be called after every session change.
func (s *SessionService) Subscribe(fn func()) (unsubscribe func()) {
	return s.changes.subscribe(fn)
}

// saveUser persists the session record without the credential, which lives
// under its own key.
func (s *SessionService) saveUser(ctx context.Context, session *domain.Session) error {
	record := session.Clone()
	record.Token = ""
	return saveJSON(ctx, s.store, ports.KeyUser, record)
}

// userIDFromToken reads the user id claim of a JWT without verifying it.
// "sub" is not consulted: issuers put the username there.
func userIDFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"userId", "user_id", "id"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
