// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for the Canteen Vote web front end.

# Handler Types

Each handler is a struct holding the API client, the session store and the
renderer it needs:

  - AuthHandler: sign-in page, staff login, OAuth callback, account setup, logout
  - VoteHandler: the menu, casting and cancelling a vote
  - DashboardHandler: ranked results for staff
  - FeedbackHandler: feedback form, markup is stripped before forwarding
  - PageHandler: profile page, /api/session and the 404 page

Handlers are created via constructor functions:

	votes := handlers.NewVoteHandler(client, store, manager, renderer)

Handlers run behind middleware.Session and middleware.LoadAuthState, so the
session ID and the resolved auth state are read from the request context:

	st := authstate.FromContext(r.Context())

# Sign-in Flow

	GET  /sign-in        → SignIn (links to the OAuth providers)
	GET  /auth/callback  → Callback (stores the token, then redirects)
	POST /staff-login    → StaffLogin (email and password)
	POST /setup-account  → Setup (graduation month or skip)
	POST /logout         → Logout

The callback page redirects with a Refresh header: 1.5s after success and 3s
after failure. A failed callback clears the session.

# Upstream Errors

Failures from the canteen API are mapped by upstreamStatus. A 401 from the
API means the stored token is no longer valid: the session is signed out and
the browser is sent to /sign-in.
*/
package handlers
