// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package callback completes OAuth sign-in.

The canteen API runs the provider flow and redirects the browser to
/auth/callback with the bearer token and provider in the query string:

	/auth/callback?token=abc&provider=google[&needs_graduation=true]

Complete moves through these states:

	invalid_callback  token or provider missing; back to sign-in after 3s
	authenticating    token stored, profile being fetched
	success           user hydrated; home (or account setup) after 1.5s
	failed            token cleared; back to sign-in after 3s

There are no retries. The HTTP side lives in package handlers.
*/
package callback
