// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires the HTTP routes on a chi router.

	handler := router.NewRouter(router.Deps{...})

Every request gets a request ID, the real client IP, logging and panic
recovery. Page routes additionally get the session cookie and the auth state
for the page load, and are gated:

	GET  /                    voter
	POST /votes               voter
	POST /votes/cancel        voter
	GET  /dashboard           staff
	GET  /sign-in             signed-out only
	GET  /staff-login         signed-out only
	POST /staff-login         signed-out only
	GET  /auth/callback       public
	GET  /setup-account       any signed-in user
	POST /setup-account       any signed-in user
	GET  /user/profile        any signed-in user
	GET  /feedback            any signed-in user
	POST /feedback            any signed-in user
	POST /logout              always, clears whatever session exists
	GET  /api/session         public, JSON
	GET  /health              public
	GET  /metrics             public, Prometheus

Unknown paths render the not-found page.
*/
package router
