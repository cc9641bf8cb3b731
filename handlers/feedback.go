// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

const maxFeedbackLength = 2000

var ratings = []int{1, 2, 3, 4, 5}

type FeedbackHandler struct {
	client    *apiclient.Client
	store     *session.Store
	manager   *authstate.Manager
	views     *views.Renderer
	sanitizer *bluemonday.Policy
}

func NewFeedbackHandler(client *apiclient.Client, store *session.Store, manager *authstate.Manager, renderer *views.Renderer) *FeedbackHandler {
	return &FeedbackHandler{
		client:    client,
		store:     store,
		manager:   manager,
		views:     renderer,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Form handles GET /feedback
func (h *FeedbackHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", "", "")
}

// Submit handles POST /feedback. Markup is stripped from the message before
// it is forwarded to the API.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "", "", "Invalid form submission")
		return
	}

	raw := r.PostFormValue("message")
	message := sanitizeFeedback(h.sanitizer, raw)
	if message == "" {
		h.render(w, r, http.StatusBadRequest, raw, "", "Please write a message")
		return
	}
	if utf8.RuneCountInString(message) > maxFeedbackLength {
		h.render(w, r, http.StatusBadRequest, raw, "", "Feedback is limited to 2000 characters")
		return
	}

	rating := 0
	if v := r.PostFormValue("rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			h.render(w, r, http.StatusBadRequest, raw, "", "Rating must be between 1 and 5")
			return
		}
		rating = n
	}

	token, err := sessionToken(r, h.store)
	if err == nil {
		err = h.client.SubmitFeedback(r.Context(), token, models.FeedbackRequest{Message: message, Rating: rating})
	}
	if err != nil {
		if errors.Is(err, apiclient.ErrNotAuthenticated) {
			expireSession(w, r, h.manager)
			return
		}
		slog.Warn("feedback not delivered", "outcome", apiclient.Classify(err))
		status, msg := upstreamStatus(err)
		h.render(w, r, status, raw, "", msg)
		return
	}

	slog.Info("feedback submitted", "rating", rating, "length", len(message))
	h.render(w, r, http.StatusOK, "", "Thanks, your feedback was sent to the canteen team.", "")
}

// sanitizeFeedback strips all markup. bluemonday escapes what it keeps, so
// the entities are decoded again: the API stores plain text.
func sanitizeFeedback(p *bluemonday.Policy, s string) string {
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

func (h *FeedbackHandler) render(w http.ResponseWriter, r *http.Request, status int, message, flash, errMsg string) {
	h.views.Render(w, status, views.Feedback, views.Page{
		Title: "Feedback",
		User:  authstate.FromContext(r.Context()).User,
		Flash: flash,
		Error: errMsg,
		Data:  views.FeedbackData{Ratings: ratings, Message: message},
	})
}
