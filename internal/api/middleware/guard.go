package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tymelesstyre/storefront/internal/api/metrics"
	"github.com/tymelesstyre/storefront/internal/core/domain"
)

// RouteDecider decides whether navigation to a route may proceed.
type RouteDecider interface {
	Decide(meta domain.RouteMeta) domain.Decision
}

// Guard enforces the access rules of meta. Denied requests are redirected to
// prefix + the decision's target.
func Guard(guard RouteDecider, meta domain.RouteMeta, prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Decide(meta)
			if !d.Allow {
				metrics.RouteDecisionsTotal.WithLabelValues("redirect").Inc()
				return c.Redirect(http.StatusFound, prefix+d.RedirectTo)
			}
			metrics.RouteDecisionsTotal.WithLabelValues("allow").Inc()
			c.Set("route", meta)
			return next(c)
		}
	}
}
