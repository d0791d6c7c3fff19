package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

// RouteResolver maps a path onto the route table and decides on it.
type RouteResolver interface {
	Resolve(path string) (domain.RouteMeta, domain.Decision)
}

// PageHandler serves the navigation targets of the storefront.
type PageHandler struct {
	resolver RouteResolver
	prefix   string
}

func NewPageHandler(resolver RouteResolver, prefix string) *PageHandler {
	return &PageHandler{resolver: resolver, prefix: prefix}
}

// Show renders the route the guard middleware admitted.
func (h *PageHandler) Show(c echo.Context) error {
	meta, ok := c.Get("route").(domain.RouteMeta)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown route")
	}
	return c.JSON(http.StatusOK, toPageResponse(meta))
}

// Fallback handles paths without an explicit route. Unknown paths are
// redirected home.
func (h *PageHandler) Fallback(c echo.Context) error {
	meta, d := h.resolver.Resolve("/" + c.Param("*"))
	if !d.Allow {
		return c.Redirect(http.StatusFound, h.prefix+d.RedirectTo)
	}
	return c.JSON(http.StatusOK, toPageResponse(meta))
}

func toPageResponse(meta domain.RouteMeta) pageResponse {
	return pageResponse{
		Route:         meta.Name,
		Path:          meta.Path,
		RequiresAuth:  meta.RequiresAuth,
		RequiresAdmin: meta.RequiresAdmin,
	}
}
