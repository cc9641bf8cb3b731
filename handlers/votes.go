// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

// Notices shown after a vote redirect, keyed by ?notice=
var voteNotices = map[string]string{
	"voted":     "Your vote has been recorded.",
	"cancelled": "Your vote has been cancelled.",
}

type VoteHandler struct {
	client  *apiclient.Client
	store   *session.Store
	manager *authstate.Manager
	views   *views.Renderer
	now     func() time.Time
}

func NewVoteHandler(client *apiclient.Client, store *session.Store, manager *authstate.Manager, renderer *views.Renderer) *VoteHandler {
	return &VoteHandler{client: client, store: store, manager: manager, views: renderer, now: time.Now}
}

// Home handles GET /
func (h *VoteHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, voteNotices[r.URL.Query().Get("notice")], "")
}

// renderHome loads dishes, the caller's vote and the results in parallel.
// Results are optional: they are shown once voting has closed or the caller
// has voted, and a failure to load them does not fail the page.
func (h *VoteHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, flash, errMsg string) {
	st := authstate.FromContext(r.Context())

	token, err := sessionToken(r, h.store)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var (
		dishes  models.DishesEnvelope
		vote    *models.Vote
		results models.ResultsEnvelope
		haveRes bool
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		dishes, err = h.client.ListDishes(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		vote, err = h.client.MyVote(ctx, token)
		return err
	})
	g.Go(func() error {
		res, err := h.client.Results(ctx, token)
		if err != nil {
			slog.Debug("results not available", "outcome", apiclient.Classify(err))
			return nil
		}
		results, haveRes = res, true
		return nil
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, err)
		return
	}

	data := views.HomeData{
		Dishes:         dishes.Data.Dishes,
		MyVote:         vote,
		VotingClosesAt: dishes.Data.VotingClosesAt,
	}
	if vote != nil {
		data.MyDishName = dishName(dishes.Data.Dishes, vote.DishID)
	}
	closed := data.VotingClosesAt != nil && !h.now().Before(*data.VotingClosesAt)
	if haveRes && (closed || vote != nil) {
		data.Results = results.Data.Results
		data.TotalVotes = results.Data.TotalVotes
	}

	h.views.Render(w, status, views.Home, views.Page{
		Title: "Menu",
		User:  st.User,
		Flash: flash,
		Error: errMsg,
		Data:  data,
	})
}

func dishName(dishes []models.Dish, id string) string {
	for _, d := range dishes {
		if d.ID == id {
			return d.Name
		}
	}
	return "a dish that is no longer listed"
}

// Cast handles POST /votes
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderHome(w, r, http.StatusBadRequest, "", "Invalid form submission")
		return
	}
	dishID := strings.TrimSpace(r.PostFormValue("dish_id"))
	if dishID == "" {
		h.renderHome(w, r, http.StatusBadRequest, "", "Pick a dish to vote for")
		return
	}

	token, err := sessionToken(r, h.store)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.client.CastVote(r.Context(), token, dishID); err != nil {
		h.actionFailed(w, r, err)
		return
	}

	slog.Info("vote cast", "dish_id", dishID)
	http.Redirect(w, r, "/?notice=voted", http.StatusSeeOther)
}

// Cancel handles POST /votes/cancel
func (h *VoteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	token, err := sessionToken(r, h.store)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.client.CancelVote(r.Context(), token); err != nil {
		h.actionFailed(w, r, err)
		return
	}

	slog.Info("vote cancelled")
	http.Redirect(w, r, "/?notice=cancelled", http.StatusSeeOther)
}

// actionFailed re-renders the menu with the API's reason, e.g. voting closed
func (h *VoteHandler) actionFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apiclient.ErrNotAuthenticated) {
		expireSession(w, r, h.manager)
		return
	}
	status, msg := upstreamStatus(err)
	slog.Warn("vote action failed", "outcome", apiclient.Classify(err))
	h.renderHome(w, r, status, "", msg)
}

// fail handles errors that leave nothing to render
func (h *VoteHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apiclient.ErrNotAuthenticated) {
		expireSession(w, r, h.manager)
		return
	}
	status, msg := upstreamStatus(err)
	slog.Error("failed to load menu", "error", err)
	h.views.Render(w, status, views.Error, views.Page{
		Title: "Error",
		User:  authstate.FromContext(r.Context()).User,
		Error: msg,
	})
}
