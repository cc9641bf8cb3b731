// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package guard decides whether a request may see a protected page.
//
// Decide is a pure function of the auth state and the route's allowed roles,
// so the HTTP wrapper in package middleware only has to act on the result.
package guard
