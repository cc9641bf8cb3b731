// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/cliparse"
	"github.com/danielhkuo/canteen-vote/guard"
	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/middleware"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/testutil"
	"github.com/danielhkuo/canteen-vote/views"
)

var (
	testVoter = models.User{ID: "v1", Email: "ada@uni.test", DisplayName: "Ada", Role: models.RoleVoter, IsActive: true}
	testStaff = models.User{ID: "s1", Email: "chef@uni.test", DisplayName: "Chef", Role: models.RoleStaff, IsActive: true}
)

// harness wires the real handlers to a fake canteen API and a SQLite store
type harness struct {
	api     *testutil.FakeAPI
	store   *session.Store
	manager *authstate.Manager
	client  *apiclient.Client
	views   *views.Renderer
	metrics *metrics.Metrics
	cfg     cliparse.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := testutil.NewFakeAPI(t)
	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig(api.URL)
	m := metrics.New(prometheus.NewRegistry())
	client := apiclient.NewClient(api.URL, apiclient.WithMetrics(m))

	manager := authstate.NewManager(authstate.NewProfileFetcher(store, client), store,
		authstate.WithLoadWait(cfg.LoadWait))
	t.Cleanup(manager.Close)

	renderer, err := views.New()
	require.NoError(t, err)

	return &harness{api: api, store: store, manager: manager, client: client, views: renderer, metrics: m, cfg: cfg}
}

func (h *harness) authHandler() *AuthHandler {
	return NewAuthHandler(h.client, h.store, h.manager, h.views, h.metrics, guard.DefaultPolicy(), h.cfg)
}

// signIn registers token with the API and stores it for a new session
func (h *harness) signIn(t *testing.T, token string, user models.User) (string, *http.Cookie) {
	t.Helper()
	h.api.AddUser(token, user)
	sid, cookie := testutil.NewSession()
	require.NoError(t, h.store.SetToken(context.Background(), sid, token))
	return sid, cookie
}

// serve runs fn behind the session and auth state middleware
func (h *harness) serve(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.Session(h.cfg)(middleware.LoadAuthState(h.manager)(fn)).ServeHTTP(w, req)
	return w
}

func withCookie(req *http.Request, c *http.Cookie) *http.Request {
	if c != nil {
		req.AddCookie(c)
	}
	return req
}
