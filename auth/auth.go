// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidSessionCookie = errors.New("invalid session cookie")
)

// NewSessionID creates a random session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// signature computes the HMAC of a session ID
// URL-safe base64 without padding keeps the cookie value short
func signature(sessionID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(sessionID))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// SignSessionID returns the cookie value for a session: "<id>.<hmac>"
func SignSessionID(sessionID, secret string) string {
	return sessionID + "." + signature(sessionID, secret)
}

// VerifySessionID checks a cookie value and returns the session ID it carries
func VerifySessionID(value, secret string) (string, error) {
	sessionID, sig, ok := strings.Cut(value, ".")
	if !ok || sessionID == "" || sig == "" {
		return "", ErrInvalidSessionCookie
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", ErrInvalidSessionCookie
	}

	expected := signature(sessionID, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidSessionCookie
	}
	return sessionID, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough to correlate log lines
	return hex.EncodeToString(sum[:8])
}
