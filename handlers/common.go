// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/middleware"
	"github.com/danielhkuo/canteen-vote/session"
)

const signInPath = "/sign-in"

// sessionToken returns the API token stored for the request's session
func sessionToken(r *http.Request, store *session.Store) (string, error) {
	token, ok, err := store.Token(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apiclient.ErrNotAuthenticated
	}
	return token, nil
}

// upstreamStatus maps a canteen API failure to the status and message shown
// to the user.
func upstreamStatus(err error) (int, string) {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Your session has expired. Please sign in again."
	case errors.Is(err, apiclient.ErrNetwork):
		return http.StatusBadGateway, "We could not reach the canteen service. Please try again."
	case errors.Is(err, apiclient.ErrMalformedResponse):
		return http.StatusBadGateway, "The canteen service sent an unexpected response."
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status >= 500 {
			status = http.StatusBadGateway
		}
		msg := apiErr.Message
		if msg == "" {
			msg = "The canteen service could not handle the request."
		}
		return status, msg
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request took too long. Please try again."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

// expireSession handles a token the API no longer accepts: the session is
// logged out and the browser sent to sign-in.
func expireSession(w http.ResponseWriter, r *http.Request, manager *authstate.Manager) {
	sid := middleware.SessionID(r.Context())
	if err := manager.Logout(r.Context(), sid); err != nil {
		slog.Error("failed to clear expired session", "error", err)
	}
	slog.Info("session token rejected by API, signed out")
	http.Redirect(w, r, signInPath, http.StatusSeeOther)
}
