// Package guard decides whether a navigation to a protected screen may
// proceed. It is a pure function of the session state; redirect side effects
// belong to the caller.
package guard

import "github.com/ArponRoy7/codemate-go/internal/session"

// DefaultRedirect is where unauthenticated navigations are sent.
const DefaultRedirect = "/login"

// Options tune one guard decision. The zero value is the plain
// authenticated-only check.
type Options struct {
	// Loading short-circuits the decision while the session probe is still
	// in flight: neither allow nor redirect yet.
	Loading bool

	// RequiredRole additionally restricts the screen to one role.
	RequiredRole string

	// RedirectTo overrides DefaultRedirect for unauthenticated users.
	RedirectTo string
}

// Decision is the guard's verdict. From preserves the originally requested
// path so the login flow can return there after success.
type Decision struct {
	Allow      bool
	Pending    bool
	RedirectTo string
	From       string
}

// Decide evaluates the guard for a navigation to path. Predicate order:
// loading, then authentication, then role.
func Decide(store *session.Store, path string, opts Options) Decision {
	if opts.Loading {
		return Decision{Pending: true, From: path}
	}

	user, ok := store.Current()
	if !ok {
		redirect := opts.RedirectTo
		if redirect == "" {
			redirect = DefaultRedirect
		}
		return Decision{RedirectTo: redirect, From: path}
	}

	if opts.RequiredRole != "" && user.Role != opts.RequiredRole {
		return Decision{RedirectTo: "/", From: path}
	}

	return Decision{Allow: true, From: path}
}
