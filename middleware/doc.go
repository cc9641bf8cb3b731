// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

All middleware has the chi signature func(http.Handler) http.Handler.

# Request Logging

	r.Use(middleware.WithLogging(m))

Logs completion (method, path, status, duration_ms, request_id) and records
the request under its chi route pattern in the Prometheus metrics.

# Sessions

	r.Use(middleware.Session(cfg))
	r.Use(middleware.LoadAuthState(manager))

Session verifies the signed cv_session cookie, issuing a new one when it is
missing or forged, and stores the session ID in the context
(middleware.SessionID). LoadAuthState then resolves the auth state for the
page load; read it with authstate.FromContext.

# Route Guards

	pages := middleware.GuardPages{Loading: loadingPage, Forbidden: forbiddenPage}
	r.With(middleware.RequireRoles(policy, pages, models.RoleStaff)).
		Get("/dashboard", dashboard.Show)
	r.With(middleware.RedirectAuthenticated(policy)).
		Get("/sign-in", authHandler.SignIn)

RequireRoles acts on guard.Policy.Decide: it serves the loading page (with
Refresh: 1), redirects, or calls the page handler. When the redirect target
is the requested page itself, as for a role the policy has no home for, the
forbidden page is served instead. RedirectAuthenticated keeps signed-in users
off sign-in pages.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Only ever logged hashed; ClientHash keys auth.HashIP with the session secret:

	slog.Warn("staff login failed", "client", middleware.ClientHash(r, secret))
*/
package middleware
