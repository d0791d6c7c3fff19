package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tymelesstyre/storefront/internal/api/handler"
	"github.com/tymelesstyre/storefront/internal/api/middleware"
	"github.com/tymelesstyre/storefront/internal/core/ports"
	"github.com/tymelesstyre/storefront/internal/core/service"
	"github.com/tymelesstyre/storefront/internal/infrastructure/http/handlers"
)

// PagePrefix is where the guarded navigation table is mounted.
const PagePrefix = "/app"

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Cart    ports.CartService
	Session ports.SessionService
	Guard   *service.RouteGuard
	Storage handlers.Pinger
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))

	// --- Health probes and metrics ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(map[string]handlers.Pinger{
		"storage": deps.Storage,
	})

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – is storage reachable?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Session routes ---
	sessionHandler := handler.NewSessionHandler(deps.Session)
	session := e.Group("/session")
	session.POST("/login", sessionHandler.Login)
	session.POST("/register", sessionHandler.Register)
	session.POST("/logout", sessionHandler.Logout)
	session.GET("", sessionHandler.Current)
	session.POST("/profile/refresh", sessionHandler.RefreshProfile)
	session.PUT("/password", sessionHandler.ChangePassword)

	e.PUT("/users/:id", sessionHandler.UpdateUser)
	e.GET("/users/:username", sessionHandler.GetUser)

	// --- Cart routes ---
	cartHandler := handler.NewCartHandler(deps.Cart)
	cart := e.Group("/cart")
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PATCH("/items/:product_id", cartHandler.UpdateQuantity)
	cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
	cart.POST("/voucher", cartHandler.ApplyVoucher)
	cart.DELETE("/voucher", cartHandler.RemoveVoucher)

	// --- Guarded pages ---
	pageHandler := handler.NewPageHandler(deps.Guard, PagePrefix)
	pages := e.Group(PagePrefix)
	for _, r := range deps.Guard.Routes() {
		pages.GET(r.Path, pageHandler.Show, middleware.Guard(deps.Guard, r, PagePrefix))
	}
	pages.GET("/*", pageHandler.Fallback)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
