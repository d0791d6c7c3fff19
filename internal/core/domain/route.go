package domain

import "strings"

const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathAdminHome = "/admin/users"
)

// RouteMeta describes a navigation target and the access it requires.
type RouteMeta struct {
	Name          string
	Path          string
	RequiresAuth  bool
	RequiresAdmin bool
}

// Decision is the outcome of a navigation check.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func Allow() Decision { return Decision{Allow: true} }

func RedirectTo(path string) Decision { return Decision{RedirectTo: path} }

// DefaultRoutes is the storefront navigation table. Children of /profile
// inherit its auth requirement.
func DefaultRoutes() []RouteMeta {
	return []RouteMeta{
		{Name: "home", Path: PathHome},
		{Name: "login", Path: PathLogin},
		{Name: "register", Path: "/register"},
		{Name: "cart", Path: "/cart"},
		{Name: "products", Path: "/products"},
		{Name: "checkout", Path: "/checkout"},
		{Name: "admin-products", Path: "/admin/products", RequiresAdmin: true},
		{Name: "admin-orders", Path: "/admin/orders", RequiresAdmin: true},
		{Name: "admin-users", Path: PathAdminHome, RequiresAdmin: true},
		{Name: "profile", Path: "/profile", RequiresAuth: true},
		{Name: "personal-details", Path: "/profile/personal-details", RequiresAuth: true},
		{Name: "address-book", Path: "/profile/address-book", RequiresAuth: true},
		{Name: "orders", Path: "/profile/orders", RequiresAuth: true},
	}
}

// MatchRoute finds the route registered for path. A trailing slash is ignored.
func MatchRoute(routes []RouteMeta, path string) (RouteMeta, bool) {
	if path != PathHome {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return RouteMeta{}, false
}
