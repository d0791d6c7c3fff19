package service

import "github.com/tymelesstyre/storefront/internal/core/domain"

// SessionReader is the view of the session the guard needs.
type SessionReader interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// RouteGuard decides whether navigation to a route may proceed. It only reads
// the in-memory session and never blocks.
type RouteGuard struct {
	session   SessionReader
	loginPath string
	homePath  string
	routes    []domain.RouteMeta
}

func NewRouteGuard(session SessionReader, loginPath, homePath string) *RouteGuard {
	if loginPath == "" {
		loginPath = domain.PathLogin
	}
	if homePath == "" {
		homePath = domain.PathHome
	}
	return &RouteGuard{
		session:   session,
		loginPath: loginPath,
		homePath:  homePath,
		routes:    domain.DefaultRoutes(),
	}
}

// WithRoutes replaces the route table used by Resolve.
func (g *RouteGuard) WithRoutes(routes []domain.RouteMeta) *RouteGuard {
	g.routes = append([]domain.RouteMeta(nil), routes...)
	return g
}

// Routes returns the route table.
func (g *RouteGuard) Routes() []domain.RouteMeta {
	return append([]domain.RouteMeta(nil), g.routes...)
}

// Decide applies the access rules of meta to the current session.
func (g *RouteGuard) Decide(meta domain.RouteMeta) domain.Decision {
	switch {
	case meta.RequiresAdmin:
		if !g.session.IsAuthenticated() {
			return domain.RedirectTo(g.loginPath)
		}
		if !g.session.IsAdmin() {
			return domain.RedirectTo(g.homePath)
		}
		return domain.Allow()
	case meta.RequiresAuth:
		if !g.session.IsAuthenticated() {
			return domain.RedirectTo(g.loginPath)
		}
		return domain.Allow()
	default:
		return domain.Allow()
	}
}

// Resolve looks path up in the route table and decides on it. Unknown paths
// are sent home.
func (g *RouteGuard) Resolve(path string) (domain.RouteMeta, domain.Decision) {
	meta, ok := domain.MatchRoute(g.routes, path)
	if !ok {
		return domain.RouteMeta{Path: path}, domain.RedirectTo(g.homePath)
	}
	return meta, g.Decide(meta)
}
