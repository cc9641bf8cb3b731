// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session stores per-browser session values.

The browser only holds a signed session ID cookie (see package auth). Everything
else lives in the session_value table under two keys:

	token     the canteen API bearer token, the only durable credential
	userRole  the last known role, advisory only

There is no encryption, expiry or refresh. Clear removes both keys; Prune is
an operator task run from the CLI.
*/
package session
