// Package userapi implements ports.UserAPI over HTTP and in memory.
package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tymelesstyre/storefront/internal/api/metrics"
	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

const (
	DefaultBaseURL = "http://localhost:8080/tymelesstyre"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the remote user service. The bearer credential is read
// from the persisted authToken key on every request.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.KeyValueStore
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens ports.KeyValueStore, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

type registerPayload struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	payload := registerPayload{
		Name:        in.Name,
		Surname:     in.Surname,
		Username:    in.Username,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    in.Password,
	}
	body, err := c.do(ctx, "register", http.MethodPost, "/user/register", payload, "Registration failed")
	if err != nil {
		return "", err
	}
	return domain.RemoteMessage(body, nil, "Registration successful"), nil
}

func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResponse, error) {
	body, err := c.do(ctx, "login", http.MethodPost, "/user/login", creds, "Login failed")
	if err != nil {
		return nil, err
	}

	var wire struct {
		Token  json.RawMessage `json:"token"`
		UserID json.RawMessage `json:"userId"`
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, domain.NewRemoteError("login", 0, nil, err, "Invalid login response")
		}
	}
	return &ports.LoginResponse{Token: scalar(wire.Token), UserID: scalar(wire.UserID)}, nil
}

func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	body, err := c.do(ctx, "get profile", http.MethodGet, "/user/profile", nil, "Failed to fetch user profile")
	if err != nil {
		return nil, err
	}
	return decodeProfile("get profile", body)
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	path := "/user/readByUsername/" + url.PathEscape(username)
	body, err := c.do(ctx, "get user by username", http.MethodGet, path, nil, "Failed to fetch user details")
	if err != nil {
		return nil, err
	}
	return decodeProfile("get user by username", body)
}

func (c *Client) UpdateUser(ctx context.Context, userID string, in ports.ProfileUpdate) (*domain.Profile, error) {
	path := "/user/update/" + url.PathEscape(userID)
	body, err := c.do(ctx, "update user", http.MethodPut, path, in, "Failed to update profile")
	if err != nil {
		return nil, err
	}
	return decodeProfile("update user", body)
}

func (c *Client) ChangePassword(ctx context.Context, userID string, in ports.PasswordChange) (string, error) {
	path := "/user/change-password/" + url.PathEscape(userID)
	body, err := c.do(ctx, "change password", http.MethodPut, path, in, "Failed to change password")
	if err != nil {
		return "", err
	}
	return domain.RemoteMessage(body, nil, "Password changed successfully"), nil
}

// do performs one request and returns the response body of a 2xx reply.
// Every failure is a *domain.RemoteError.
func (c *Client) do(ctx context.Context, op, method, path string, payload any, fallback string) ([]byte, error) {
	start := time.Now()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, domain.NewRemoteError(op, 0, nil, err, fallback)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, domain.NewRemoteError(op, 0, nil, err, fallback)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug().Str("op", op).Str("method", method).Str("path", path).Msg("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "error", start)
		c.log.Debug().Err(err).Str("op", op).Msg("api request failed")
		return nil, domain.NewRemoteError(op, 0, nil, err, fallback)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(op, "error", start)
		return nil, domain.NewRemoteError(op, resp.StatusCode, nil, err, fallback)
	}

	c.observe(op, strconv.Itoa(resp.StatusCode), start)
	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewRemoteError(op, resp.StatusCode, body, nil, fallback)
	}
	return body, nil
}

func (c *Client) bearer(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, ok, err := c.tokens.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		c.log.Warn().Err(err).Msg("could not read auth token, sending request without it")
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (c *Client) observe(op, status string, start time.Time) {
	metrics.RemoteRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.RemoteRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// profileWire accepts ids sent as numbers or strings.
type profileWire struct {
	UserID      json.RawMessage `json:"userId"`
	ID          json.RawMessage `json:"id"`
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Surname     string          `json:"surname"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber"`
	Role        string          `json:"role"`
}

func decodeProfile(op string, body []byte) (*domain.Profile, error) {
	var w profileWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, domain.NewRemoteError(op, 0, nil, fmt.Errorf("decode profile: %w", err), "Invalid profile response")
	}
	id := scalar(w.UserID)
	if id == "" {
		id = scalar(w.ID)
	}
	return &domain.Profile{
		UserID:      id,
		Username:    w.Username,
		Name:        w.Name,
		Surname:     w.Surname,
		Email:       w.Email,
		PhoneNumber: w.PhoneNumber,
		Role:        w.Role,
	}, nil
}

// scalar renders a JSON string or number as text.
func scalar(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
