package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tymelesstyre/storefront/internal/api/metrics"
	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

// SessionHandler exposes the client session over HTTP.
type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Login handles POST /session/login.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	metrics.SessionEventsTotal.WithLabelValues("login", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Session:    toSessionResponse(res.Session),
		RedirectTo: res.RedirectTo,
	})
}

// Register handles POST /session/register.
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	msg, err := h.service.Register(c.Request().Context(), toRegisterInput(req))
	metrics.SessionEventsTotal.WithLabelValues("register", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: msg})
}

// Logout handles POST /session/logout.
func (h *SessionHandler) Logout(c echo.Context) error {
	h.service.Logout(c.Request().Context())
	metrics.SessionEventsTotal.WithLabelValues("logout", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Current handles GET /session.
func (h *SessionHandler) Current(c echo.Context) error {
	s, ok := h.service.CurrentUser()
	if !ok {
		return domain.ErrNotLoggedIn
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}

// RefreshProfile handles POST /session/profile/refresh.
func (h *SessionHandler) RefreshProfile(c echo.Context) error {
	s, err := h.service.GetCurrentProfile(c.Request().Context())
	metrics.SessionEventsTotal.WithLabelValues("profile_refresh", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}

// ChangePassword handles PUT /session/password.
func (h *SessionHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateUser handles PUT /users/:id.
func (h *SessionHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	p, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), toProfileUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

// GetUser handles GET /users/:username.
func (h *SessionHandler) GetUser(c echo.Context) error {
	p, err := h.service.FetchUserDetails(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}
