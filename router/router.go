// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/cliparse"
	"github.com/danielhkuo/canteen-vote/guard"
	"github.com/danielhkuo/canteen-vote/handlers"
	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/middleware"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

// Deps are the long-lived services the routes share. They are built once in
// main.
type Deps struct {
	Store   *session.Store
	Client  *apiclient.Client
	Manager *authstate.Manager
	Views   *views.Renderer
	Metrics *metrics.Metrics
	Policy  guard.Policy
	Config  cliparse.Config
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.WithLogging(d.Metrics))
	r.Use(chimw.Recoverer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(d.Client, d.Store, d.Manager, d.Views, d.Metrics, d.Policy, d.Config)
	pageHandler := handlers.NewPageHandler(d.Store, d.Views)
	voteHandler := handlers.NewVoteHandler(d.Client, d.Store, d.Manager, d.Views)
	dashboardHandler := handlers.NewDashboardHandler(d.Client, d.Store, d.Manager, d.Views)
	feedbackHandler := handlers.NewFeedbackHandler(d.Client, d.Store, d.Manager, d.Views)

	pages := middleware.GuardPages{
		Loading:   d.Views.LoadingPage(),
		Forbidden: http.HandlerFunc(pageHandler.Forbidden),
	}
	anyRole := middleware.RequireRoles(d.Policy, pages)
	voterOnly := middleware.RequireRoles(d.Policy, pages, models.RoleVoter)
	staffOnly := middleware.RequireRoles(d.Policy, pages, models.RoleStaff)
	publicOnly := middleware.RedirectAuthenticated(d.Policy)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", d.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(d.Config))

		// The callback stores a fresh token; the old session state is irrelevant
		r.Get("/auth/callback", authHandler.Callback)
		// Logout works for any session, even while its auth check is loading
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.LoadAuthState(d.Manager))

			r.Get("/api/session", pageHandler.Session)

			// Public-only pages
			r.With(publicOnly).Get("/sign-in", authHandler.SignIn)
			r.With(publicOnly).Get("/staff-login", authHandler.StaffLoginForm)
			r.With(publicOnly).Post("/staff-login", authHandler.StaffLogin)

			// Voter pages
			r.With(voterOnly).Get("/", voteHandler.Home)
			r.With(voterOnly).Post("/votes", voteHandler.Cast)
			r.With(voterOnly).Post("/votes/cancel", voteHandler.Cancel)

			// Staff pages
			r.With(staffOnly).Get("/dashboard", dashboardHandler.Show)

			// Any signed-in user
			r.With(anyRole).Get("/setup-account", authHandler.SetupForm)
			r.With(anyRole).Post("/setup-account", authHandler.Setup)
			r.With(anyRole).Get("/user/profile", pageHandler.Profile)
			r.With(anyRole).Get("/feedback", feedbackHandler.Form)
			r.With(anyRole).Post("/feedback", feedbackHandler.Submit)
		})
	})

	r.NotFound(pageHandler.NotFound)

	return r
}
