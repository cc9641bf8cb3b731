// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/authstate"
	"github.com/danielhkuo/canteen-vote/middleware"
	"github.com/danielhkuo/canteen-vote/models"
	"github.com/danielhkuo/canteen-vote/session"
	"github.com/danielhkuo/canteen-vote/views"
)

type PageHandler struct {
	store *session.Store
	views *views.Renderer
}

func NewPageHandler(store *session.Store, renderer *views.Renderer) *PageHandler {
	return &PageHandler{store: store, views: renderer}
}

// Profile handles GET /user/profile
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	st := authstate.FromContext(r.Context())
	h.views.Render(w, http.StatusOK, views.Profile, views.Page{
		Title: "Profile",
		User:  st.User,
	})
}

// Session handles GET /api/session
func (h *PageHandler) Session(w http.ResponseWriter, r *http.Request) {
	st := authstate.FromContext(r.Context())

	resp := models.SessionResponse{
		User:            st.User,
		Loading:         st.Loading,
		IsAuthenticated: st.IsAuthenticated(),
	}
	if st.Err != nil {
		resp.Error = apiclient.Classify(st.Err)
	}

	role, ok, err := h.store.Role(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		slog.Warn("failed to read cached role", "error", err)
	} else if ok {
		resp.CachedRole = role
	}

	w.Header().Set("Cache-Control", "no-store")
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Forbidden is served by the route guard when a signed-in user has no page
// their role may see. The error page carries the logout form.
func (h *PageHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	st := authstate.FromContext(r.Context())
	slog.Warn("no page for role", "role", st.Role(), "path", r.URL.Path)
	h.views.Render(w, http.StatusForbidden, views.Error, views.Page{
		Title: "No access",
		User:  st.User,
		Error: "Your account does not have access to this page.",
	})
}

// NotFound renders the error page for unknown routes
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusNotFound, views.Error, views.Page{
		Title: "Not found",
		Error: "That page does not exist.",
	})
}
