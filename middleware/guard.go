// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/url"

	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/guard"
	"github.com/danielhkuo/canteen-vote/models"
)

// GuardPages are the pages a route guard serves in place of the protected one
type GuardPages struct {
	// Loading is shown while the auth check is still running
	Loading http.Handler
	// Forbidden is shown when the user's role home is the page that just
	// refused them. It must write its own status.
	Forbidden http.Handler
}

// RequireRoles protects a page. While the auth check is still running the
// loading page is served with a one second refresh; anonymous users are
// sent to sign-in and users with the wrong role to their role home. With no
// roles any signed-in user is let through.
func RequireRoles(policy guard.Policy, pages GuardPages, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := authstate.FromContext(r.Context())
			d := policy.Decide(guard.Input{
				Loading:       st.Loading,
				Authenticated: st.IsAuthenticated(),
				Role:          st.Role(),
			}, roles...)

			switch d.Kind {
			case guard.Loading:
				w.Header().Set("Refresh", "1")
				w.Header().Set("Cache-Control", "no-store")
				pages.Loading.ServeHTTP(w, r)
			case guard.Redirect:
				// The role home refusing its own role would redirect forever
				if samePath(r, d.Target) {
					w.Header().Set("Cache-Control", "no-store")
					pages.Forbidden.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, d.Target, redirectStatus(r))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RedirectAuthenticated keeps signed-in users off public-only pages such as
// sign-in, sending them to their role home instead. Users whose role has no
// home in the policy are let through so they can sign in again.
func RedirectAuthenticated(policy guard.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := authstate.FromContext(r.Context())
			if st.IsAuthenticated() {
				if home, ok := policy.Home(st.Role()); ok && !samePath(r, home) {
					http.Redirect(w, r, home, redirectStatus(r))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// samePath reports whether target points at the page being requested
func samePath(r *http.Request, target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Path == r.URL.Path
}

// Form posts are redirected with 303 so the browser follows with a GET
func redirectStatus(r *http.Request) int {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
