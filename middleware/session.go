// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/canteen-vote/auth"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/cliparse"
)

const SessionCookieName = "cv_session"

type sessionKey struct{}

// Session reads the signed session cookie and puts the session ID in the
// request context. A missing or forged cookie gets a fresh ID and a new
// cookie. The cookie carries no expiry; it lives for the browser session.
func Session(cfg cliparse.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				sid, err := auth.VerifySessionID(c.Value, cfg.SessionSecret)
				if err != nil {
					slog.Warn("rejected session cookie",
						"error", err,
						"client", ClientHash(r, cfg.SessionSecret))
				} else {
					sessionID = sid
				}
			} else if !errors.Is(err, http.ErrNoCookie) {
				slog.Warn("unreadable session cookie", "error", err)
			}

			if sessionID == "" {
				sessionID = auth.NewSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    auth.SignSessionID(sessionID, cfg.SessionSecret),
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the ID set by Session, empty outside of it
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}

// StateLoader resolves the auth state for a page load
type StateLoader interface {
	Load(ctx context.Context, sessionID string) authstate.State
}

// LoadAuthState resolves who is signed in and attaches it to the request.
// It must run after Session.
func LoadAuthState(loader StateLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := loader.Load(r.Context(), SessionID(r.Context()))
			ctx := authstate.WithState(r.Context(), st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
