// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/testutil"
)

var testDishes = []models.Dish{
	{ID: "d1", Name: "Laksa", Category: "Noodles"},
	{ID: "d2", Name: "Bibimbap", Category: "Rice"},
}

func TestHome(t *testing.T) {
	h := newHarness(t)
	vh := NewVoteHandler(h.client, h.store, h.manager, h.views)
	h.api.SetDishes(testDishes, nil)
	_, cookie := h.signIn(t, "abc", testVoter)

	w := h.serve(vh.Home, withCookie(testutil.MakeRequest("GET", "/", nil, nil), cookie))

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, "Laksa")
	assert.Contains(t, body, "Bibimbap")
	assert.NotContains(t, body, "You voted for")
	assert.NotContains(t, body, "Current results", "results stay hidden before voting")
}

func TestCastAndCancelVote(t *testing.T) {
	h := newHarness(t)
	vh := NewVoteHandler(h.client, h.store, h.manager, h.views)
	h.api.SetDishes(testDishes, nil)
	_, cookie := h.signIn(t, "abc", testVoter)

	// Cast
	w := h.serve(vh.Cast, withCookie(testutil.MakeFormRequest("/votes", url.Values{"dish_id": {"d2"}}), cookie))
	testutil.AssertRedirect(t, w, http.StatusSeeOther, "/?notice=voted")

	vote, ok := h.api.Vote("abc")
	require.True(t, ok)
	assert.Equal(t, "d2", vote.DishID)

	// Home now shows the vote and the results
	w = h.serve(vh.Home, withCookie(testutil.MakeRequest("GET", "/?notice=voted", nil, nil), cookie))
	body := w.Body.String()
	assert.Contains(t, body, "Your vote has been recorded.")
	assert.Contains(t, body, "You voted for <strong>Bibimbap</strong>")
	assert.Contains(t, body, "Bibimbap: 1 (100%)")

	// Cancel
	w = h.serve(vh.Cancel, withCookie(testutil.MakeRequest("POST", "/votes/cancel", nil, nil), cookie))
	testutil.AssertRedirect(t, w, http.StatusSeeOther, "/?notice=cancelled")

	_, ok = h.api.Vote("abc")
	assert.False(t, ok)
}

func TestCastVoteErrors(t *testing.T) {
	h := newHarness(t)
	vh := NewVoteHandler(h.client, h.store, h.manager, h.views)
	_, cookie := h.signIn(t, "abc", testVoter)

	t.Run("missing dish", func(t *testing.T) {
		h.api.SetDishes(testDishes, nil)
		w := h.serve(vh.Cast, withCookie(testutil.MakeFormRequest("/votes", url.Values{}), cookie))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, w.Body.String(), "Pick a dish to vote for")
	})

	t.Run("unknown dish", func(t *testing.T) {
		h.api.SetDishes(testDishes, nil)
		w := h.serve(vh.Cast, withCookie(testutil.MakeFormRequest("/votes", url.Values{"dish_id": {"d9"}}), cookie))
		testutil.AssertStatus(t, w, http.StatusNotFound)
		assert.Contains(t, w.Body.String(), "Dish not found")
	})

	t.Run("voting closed", func(t *testing.T) {
		closed := time.Now().Add(-time.Minute)
		h.api.SetDishes(testDishes, &closed)
		w := h.serve(vh.Cast, withCookie(testutil.MakeFormRequest("/votes", url.Values{"dish_id": {"d1"}}), cookie))
		testutil.AssertStatus(t, w, http.StatusConflict)
		assert.Contains(t, w.Body.String(), "Voting is closed")
	})

	t.Run("cancel without a vote", func(t *testing.T) {
		h.api.SetDishes(testDishes, nil)
		w := h.serve(vh.Cancel, withCookie(testutil.MakeRequest("POST", "/votes/cancel", nil, nil), cookie))
		testutil.AssertStatus(t, w, http.StatusNotFound)
		assert.Contains(t, w.Body.String(), "No vote to cancel")
	})
}

func TestHomeWithRevokedToken(t *testing.T) {
	h := newHarness(t)
	vh := NewVoteHandler(h.client, h.store, h.manager, h.views)
	sid, cookie := testutil.NewSession()
	require.NoError(t, h.store.SetToken(context.Background(), sid, "revoked"))

	w := h.serve(vh.Home, withCookie(testutil.MakeRequest("GET", "/", nil, nil), cookie))
	testutil.AssertRedirect(t, w, http.StatusSeeOther, "/sign-in")

	_, ok, err := h.store.Token(context.Background(), sid)
	require.NoError(t, err)
	assert.False(t, ok, "a rejected token is cleared")
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	dh := NewDashboardHandler(h.client, h.store, h.manager, h.views)
	h.api.SetDishes(testDishes, nil)

	_, voterCookie := h.signIn(t, "voter", testVoter)
	vh := NewVoteHandler(h.client, h.store, h.manager, h.views)
	h.serve(vh.Cast, withCookie(testutil.MakeFormRequest("/votes", url.Values{"dish_id": {"d2"}}), voterCookie))

	_, cookie := h.signIn(t, "staff", testStaff)
	w := h.serve(dh.Show, withCookie(testutil.MakeRequest("GET", "/dashboard", nil, nil), cookie))

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, "1 votes cast")
	assert.Contains(t, body, "<td>1st</td><td>Bibimbap</td>")
}
