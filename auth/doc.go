// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session cookie signing and privacy helpers.

# Session IDs

Every browser gets a random UUID session ID:

	sid := auth.NewSessionID()

The ID keys the rows of the session store; it carries no credential itself.

# Cookie Signing

The cookie value is the session ID plus an HMAC-SHA256 signature:

	value := auth.SignSessionID(sid, secret)   // "<uuid>.<sig>"
	sid, err := auth.VerifySessionID(value, secret)

The signature is URL-safe base64 without padding. A forged or malformed value
returns ErrInvalidSessionCookie and the middleware issues a fresh session.

# IP Hashing

For log correlation without storing addresses:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
