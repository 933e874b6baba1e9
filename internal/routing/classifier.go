// Package routing implements page-level access control: a pure route
// classifier and the redirect decision engine that combines route class with
// authentication state.
package routing

import "strings"

// RouteClass is the access category of a request path.
type RouteClass string

const (
	// ClassAuth is login/registration pages; authenticated users are bounced home.
	ClassAuth RouteClass = "auth"
	// ClassOrgScoped is tenant-scoped application pages under /org/.
	ClassOrgScoped RouteClass = "org_scoped"
	// ClassLegacyProtected is pre-tenancy protected pages (/dashboard, /admin, /calendar).
	ClassLegacyProtected RouteClass = "legacy_protected"
	// ClassPublic is everything else.
	ClassPublic RouteClass = "public"
)

var (
	authPrefixes    = []string{"/login", "/register", "/register-org"}
	legacyPrefixes  = []string{"/dashboard", "/admin", "/calendar"}
	orgScopedPrefix = "/org/"
)

// Classify maps a request path to its route class. Matching is case-sensitive
// and prefix-based on the path portion only; the query string and a trailing
// slash are ignored. Unmatched input falls through to ClassPublic.
func Classify(path string) RouteClass {
	p := normalize(path)
	switch {
	case hasAnyPrefix(p, authPrefixes):
		return ClassAuth
	case strings.HasPrefix(p, orgScopedPrefix):
		return ClassOrgScoped
	case hasAnyPrefix(p, legacyPrefixes):
		return ClassLegacyProtected
	default:
		return ClassPublic
	}
}

// IsProtected reports whether the path requires an authenticated caller.
func IsProtected(path string) bool {
	switch Classify(path) {
	case ClassOrgScoped, ClassLegacyProtected:
		return true
	}
	return false
}

func normalize(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
