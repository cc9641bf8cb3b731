// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/testutil"
)

func TestSessionAPI(t *testing.T) {
	h := newHarness(t)
	ph := NewPageHandler(h.store, h.views)

	t.Run("signed in", func(t *testing.T) {
		sid, cookie := h.signIn(t, "abc", testVoter)
		require.NoError(t, h.store.SetRole(context.Background(), sid, models.RoleVoter))

		w := h.serve(ph.Session, withCookie(testutil.MakeRequest("GET", "/api/session", nil, nil), cookie))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.SessionResponse
		testutil.AssertJSON(t, w, &resp)
		assert.True(t, resp.IsAuthenticated)
		assert.False(t, resp.Loading)
		require.NotNil(t, resp.User)
		assert.Equal(t, "ada@uni.test", resp.User.Email)
		assert.Equal(t, models.RoleVoter, resp.CachedRole)
		assert.Empty(t, resp.Error)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := h.serve(ph.Session, testutil.MakeRequest("GET", "/api/session", nil, nil))

		var resp models.SessionResponse
		testutil.AssertJSON(t, w, &resp)
		assert.False(t, resp.IsAuthenticated)
		assert.Nil(t, resp.User)
		assert.Equal(t, "not_authenticated", resp.Error)
		assert.Equal(t, models.Role(""), resp.CachedRole)
	})
}

func TestProfilePage(t *testing.T) {
	h := newHarness(t)
	ph := NewPageHandler(h.store, h.views)
	_, cookie := h.signIn(t, "abc", testVoter)

	w := h.serve(ph.Profile, withCookie(testutil.MakeRequest("GET", "/user/profile", nil, nil), cookie))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "ada@uni.test")
	assert.Contains(t, w.Body.String(), "Not set")
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	ph := NewPageHandler(h.store, h.views)

	w := h.serve(ph.NotFound, testutil.MakeRequest("GET", "/nope", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assert.Contains(t, w.Body.String(), "That page does not exist.")
}
