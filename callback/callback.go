// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package callback

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/models"
)

// Status of an OAuth callback
type Status string

const (
	InvalidCallback Status = "invalid_callback"
	Authenticating  Status = "authenticating"
	Success         Status = "success"
	Failed          Status = "failed"
)

// Redirect delays shown on the status page
const (
	SuccessDelay = 1500 * time.Millisecond
	FailureDelay = 3 * time.Second
)

// Redirect targets
const (
	HomePath           = "/"
	SetupPath          = "/setup-account"
	InvalidRedirect    = "/sign-in?error=invalid_callback"
	AuthFailedRedirect = "/sign-in?error=auth_failed"
)

const flow = "oauth_callback"

// Outcome is the final state of one callback attempt and where the browser
// goes next.
type Outcome struct {
	Status   Status
	Redirect string
	Delay    time.Duration
	Message  string
	Provider string
	User     *models.User
}

type TokenStore interface {
	SetToken(ctx context.Context, sessionID, token string) error
	SetRole(ctx context.Context, sessionID string, role models.Role) error
	Clear(ctx context.Context, sessionID string) error
}

type ProfileClient interface {
	FetchProfile(ctx context.Context, token string) (models.User, error)
}

type Hydrator interface {
	Hydrate(sessionID string, user models.User)
}

// Handler completes the OAuth round trip started on the canteen API. The API
// redirects back with ?token=...&provider=...; Complete stores the token,
// loads the profile and decides where the browser goes next.
type Handler struct {
	store   TokenStore
	client  ProfileClient
	auth    Hydrator
	metrics *metrics.Metrics
}

func NewHandler(store TokenStore, client ProfileClient, auth Hydrator, m *metrics.Metrics) *Handler {
	return &Handler{store: store, client: client, auth: auth, metrics: m}
}

// Complete runs the callback. It never retries; any failure sends the browser
// back to sign-in after FailureDelay.
func (h *Handler) Complete(ctx context.Context, sessionID string, query url.Values) Outcome {
	token := query.Get("token")
	provider := query.Get("provider")

	if token == "" || provider == "" || sessionID == "" {
		slog.Warn("invalid oauth callback",
			"has_token", token != "",
			"provider", provider)
		h.metrics.AuthEvent(flow, string(InvalidCallback))
		return Outcome{
			Status:   InvalidCallback,
			Redirect: InvalidRedirect,
			Delay:    FailureDelay,
			Message:  "The sign-in link was incomplete. Please try again.",
			Provider: provider,
		}
	}

	if err := h.store.SetToken(ctx, sessionID, token); err != nil {
		slog.Error("failed to store token", "error", err, "provider", provider)
		return h.fail(ctx, sessionID, provider, "We could not save your sign-in. Please try again.")
	}

	user, err := h.client.FetchProfile(ctx, token)
	if err != nil {
		slog.Warn("profile fetch after oauth failed",
			"provider", provider,
			"outcome", apiclient.Classify(err))
		return h.fail(ctx, sessionID, provider, failureMessage(err))
	}

	if err := h.store.SetRole(ctx, sessionID, user.Role); err != nil {
		// Role is advisory; the user is still signed in
		slog.Warn("failed to cache role", "error", err)
	}
	h.auth.Hydrate(sessionID, user)

	redirect := HomePath
	if query.Get("needs_graduation") == "true" {
		redirect = SetupPath
	}

	slog.Info("oauth sign-in completed",
		"provider", provider,
		"role", user.Role,
		"redirect", redirect)
	h.metrics.AuthEvent(flow, string(Success))

	return Outcome{
		Status:   Success,
		Redirect: redirect,
		Delay:    SuccessDelay,
		Message:  "Signed in as " + displayName(user),
		Provider: provider,
		User:     &user,
	}
}

func (h *Handler) fail(ctx context.Context, sessionID, provider, message string) Outcome {
	if err := h.store.Clear(ctx, sessionID); err != nil {
		slog.Error("failed to clear session after callback failure", "error", err)
	}
	h.metrics.AuthEvent(flow, string(Failed))
	return Outcome{
		Status:   Failed,
		Redirect: AuthFailedRedirect,
		Delay:    FailureDelay,
		Message:  message,
		Provider: provider,
	}
}

func failureMessage(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrNotAuthenticated):
		return "Your sign-in was not accepted. Please try again."
	case errors.Is(err, apiclient.ErrNetwork):
		return "We could not reach the canteen service. Please try again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Authentication failed. Please try again."
	}
}

func displayName(u models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
