package routing

import (
	"go.uber.org/zap"
)

// Decision is the outcome of the redirect engine for one request.
type Decision struct {
	// RedirectTo is the target path, empty when no action is required.
	RedirectTo string
	// Skipped is true when enforcement is disabled by deployment
	// configuration. Skipped is not "allowed": the caller was never
	// authenticated, the check simply did not run.
	Skipped bool
}

// None reports whether the engine takes no action for the request.
func (d Decision) None() bool {
	return d.RedirectTo == ""
}

// Engine decides whether a page request is allowed through, redirected to
// login, or bounced away from auth pages. It is constructed from the identity
// deployment configuration: with no identity base URL there is nothing to
// authenticate against, so the engine reports every decision as skipped rather
// than silently treating callers as authenticated.
type Engine struct {
	enabled bool
	logger  *zap.Logger
}

// NewEngine creates a redirect decision engine. identityBaseURL empty disables
// enforcement; this is logged loudly because it means protected pages are not
// being gated at the edge.
func NewEngine(identityBaseURL string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	enabled := identityBaseURL != ""
	if !enabled {
		logger.Warn("identity base URL not configured; page-level route protection is DISABLED")
	}
	return &Engine{enabled: enabled, logger: logger}
}

// Enabled reports whether the engine enforces route protection.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// Decide returns the action for a path given the caller's authentication
// state. The protected-route check runs before the auth-route check; a path
// is never both.
func (e *Engine) Decide(path string, authenticated bool) Decision {
	if !e.enabled {
		e.logger.Warn("authentication check skipped, enforcement disabled", zap.String("path", path))
		return Decision{Skipped: true}
	}
	return decide(path, authenticated)
}

// decide is the pure decision rule.
func decide(path string, authenticated bool) Decision {
	if !authenticated && IsProtected(path) {
		return Decision{RedirectTo: "/login"}
	}
	if authenticated && Classify(path) == ClassAuth {
		return Decision{RedirectTo: "/"}
	}
	return Decision{}
}
