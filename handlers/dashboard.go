// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

type DashboardHandler struct {
	client  *apiclient.Client
	store   *session.Store
	manager *authstate.Manager
	views   *views.Renderer
}

func NewDashboardHandler(client *apiclient.Client, store *session.Store, manager *authstate.Manager, renderer *views.Renderer) *DashboardHandler {
	return &DashboardHandler{client: client, store: store, manager: manager, views: renderer}
}

// Show handles GET /dashboard
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	st := authstate.FromContext(r.Context())

	token, err := sessionToken(r, h.store)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var (
		results models.ResultsEnvelope
		dishes  models.DishesEnvelope
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		results, err = h.client.Results(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		dishes, err = h.client.ListDishes(ctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, err)
		return
	}

	ranked := append([]models.Result(nil), results.Data.Results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})

	h.views.Render(w, http.StatusOK, views.Dashboard, views.Page{
		Title: "Dashboard",
		User:  st.User,
		Data: views.DashboardData{
			Results:        ranked,
			TotalVotes:     results.Data.TotalVotes,
			VotingClosesAt: dishes.Data.VotingClosesAt,
		},
	})
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apiclient.ErrNotAuthenticated) {
		expireSession(w, r, h.manager)
		return
	}
	status, msg := upstreamStatus(err)
	slog.Error("failed to load dashboard", "error", err)
	h.views.Render(w, status, views.Error, views.Page{
		Title: "Error",
		User:  authstate.FromContext(r.Context()).User,
		Error: msg,
	})
}
