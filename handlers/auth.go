// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/callback"
	"github.com/danielhkuo/canteen-vote/cliparse"
	"github.com/danielhkuo/canteen-vote/guard"
	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/middleware"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

// Messages for the ?error= codes sign-in is redirected to
var signInErrors = map[string]string{
	"invalid_callback": "The sign-in link was incomplete. Please try again.",
	"auth_failed":      "Authentication failed. Please try again.",
}

type AuthHandler struct {
	client   *apiclient.Client
	store    *session.Store
	manager  *authstate.Manager
	callback *callback.Handler
	views    *views.Renderer
	metrics  *metrics.Metrics
	policy   guard.Policy
	cfg      cliparse.Config
}

func NewAuthHandler(client *apiclient.Client, store *session.Store, manager *authstate.Manager,
	views *views.Renderer, m *metrics.Metrics, policy guard.Policy, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{
		client:   client,
		store:    store,
		manager:  manager,
		callback: callback.NewHandler(store, client, manager, m),
		views:    views,
		metrics:  m,
		policy:   policy,
		cfg:      cfg,
	}
}

// SignIn handles GET /sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, views.SignIn, views.Page{
		Title: "Sign in",
		Error: signInErrors[r.URL.Query().Get("error")],
		Data: views.SignInData{Providers: []views.ProviderLink{
			{Name: "Google", URL: h.client.OAuthURL(models.ProviderGoogle)},
			{Name: "Microsoft", URL: h.client.OAuthURL(models.ProviderMicrosoft)},
		}},
	})
}

// StaffLoginForm handles GET /staff-login
func (h *AuthHandler) StaffLoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, views.StaffLogin, views.Page{
		Title: "Staff sign in",
		Data:  views.StaffLoginData{},
	})
}

// StaffLogin handles POST /staff-login. A form post gets HTML back; a JSON
// body gets JSON on every path, including the redirect target on success.
func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req models.StaffLoginRequest
	asJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	fail := func(status int, msg string) {
		if asJSON {
			middleware.ErrorResponse(w, status, msg)
			return
		}
		h.renderStaffLogin(w, status, req.Email, msg)
	}

	if asJSON {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			fail(http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			fail(http.StatusBadRequest, "Invalid form submission")
			return
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		fail(http.StatusBadRequest, "Email and password are required")
		return
	}

	client := middleware.ClientHash(r, h.cfg.SessionSecret)
	token, user, err := h.client.StaffLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := upstreamStatus(err)
		var apiErr *apiclient.APIError
		if errors.Is(err, apiclient.ErrNotAuthenticated) || (errors.As(err, &apiErr) && apiErr.Status < 500) {
			status, msg = http.StatusUnauthorized, "Invalid email or password"
		}
		slog.Warn("staff login failed", "client", client, "outcome", apiclient.Classify(err))
		h.metrics.AuthEvent("staff_login", "failed")
		fail(status, msg)
		return
	}

	sid := middleware.SessionID(r.Context())
	if err := h.store.SetToken(r.Context(), sid, token); err != nil {
		slog.Error("failed to store token", "error", err)
		fail(http.StatusInternalServerError, "We could not save your sign-in. Please try again.")
		return
	}
	if err := h.store.SetRole(r.Context(), sid, user.Role); err != nil {
		slog.Warn("failed to cache role", "error", err)
	}
	h.manager.Hydrate(sid, user)

	slog.Info("staff login completed", "client", client, "role", user.Role)
	h.metrics.AuthEvent("staff_login", "success")

	home := h.policy.HomeFor(user.Role)
	if asJSON {
		middleware.JSONResponse(w, http.StatusOK, models.StaffLoginResult{Redirect: home, User: &user})
		return
	}
	http.Redirect(w, r, home, http.StatusSeeOther)
}

func (h *AuthHandler) renderStaffLogin(w http.ResponseWriter, status int, email, msg string) {
	h.views.Render(w, status, views.StaffLogin, views.Page{
		Title: "Staff sign in",
		Error: msg,
		Data:  views.StaffLoginData{Email: email},
	})
}

// Callback handles GET /auth/callback. The status page redirects itself
// after the outcome's delay.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	out := h.callback.Complete(r.Context(), middleware.SessionID(r.Context()), r.URL.Query())

	h.views.Render(w, http.StatusOK, views.Callback, views.Page{
		Title:   "Signing in",
		User:    out.User,
		Refresh: &views.Refresh{URL: out.Redirect, Delay: out.Delay},
		Data:    out,
	})
}

// SetupForm handles GET /setup-account
func (h *AuthHandler) SetupForm(w http.ResponseWriter, r *http.Request) {
	st := authstate.FromContext(r.Context())
	h.renderSetup(w, http.StatusOK, st.User, "", "")
}

// Setup handles POST /setup-account: either skip=true or an
// expected_graduation_date of the form YYYY-MM.
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	st := authstate.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderSetup(w, http.StatusBadRequest, st.User, "", "Invalid form submission")
		return
	}

	var req models.SetupGraduationRequest
	month := strings.TrimSpace(r.PostFormValue("expected_graduation_date"))
	if r.PostFormValue("skip") == "true" {
		req.Skip = true
	} else {
		if _, err := time.Parse("2006-01", month); err != nil {
			h.renderSetup(w, http.StatusBadRequest, st.User, month, "Enter your expected graduation month as YYYY-MM")
			return
		}
		req.ExpectedGraduationDate = month
	}

	token, err := sessionToken(r, h.store)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotAuthenticated) {
			expireSession(w, r, h.manager)
			return
		}
		slog.Error("failed to read session token", "error", err)
		h.renderSetup(w, http.StatusInternalServerError, st.User, month, "Something went wrong. Please try again.")
		return
	}

	user, err := h.client.SetupGraduation(r.Context(), token, req)
	switch {
	case errors.Is(err, apiclient.ErrNotAuthenticated):
		expireSession(w, r, h.manager)
		return
	case errors.Is(err, apiclient.ErrSetupFailed):
		h.metrics.AuthEvent("setup", "failed")
		h.renderSetup(w, http.StatusUnprocessableEntity, st.User, month, setupMessage(err))
		return
	case err != nil:
		slog.Warn("graduation setup failed", "outcome", apiclient.Classify(err))
		h.metrics.AuthEvent("setup", "failed")
		status, msg := upstreamStatus(err)
		h.renderSetup(w, status, st.User, month, msg)
		return
	}

	if user != nil {
		h.manager.Hydrate(middleware.SessionID(r.Context()), *user)
	}

	slog.Info("graduation setup completed", "skipped", req.Skip)
	h.metrics.AuthEvent("setup", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func setupMessage(err error) string {
	var setupErr *apiclient.SetupError
	if errors.As(err, &setupErr) && setupErr.Message != "" {
		return setupErr.Message
	}
	return "We could not save your graduation date. Please try again."
}

func (h *AuthHandler) renderSetup(w http.ResponseWriter, status int, user *models.User, month, msg string) {
	h.views.Render(w, status, views.Setup, views.Page{
		Title: "Set up your account",
		User:  user,
		Error: msg,
		Data:  views.SetupData{Month: month},
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(r.Context())
	if err := h.manager.Logout(r.Context(), sid); err != nil {
		slog.Error("failed to clear session on logout", "error", err)
		h.metrics.AuthEvent("logout", "failed")
	} else {
		h.metrics.AuthEvent("logout", "success")
	}
	http.Redirect(w, r, signInPath, http.StatusSeeOther)
}
