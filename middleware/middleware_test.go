// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		statusCode int
		body       string
	}{
		{"menu page", "GET", http.StatusOK, "<h1>Menu</h1>"},
		{"vote redirect", "POST", http.StatusSeeOther, ""},
		{"session json", "GET", http.StatusOK, `{"loading":true}`},
		{"upstream down", "GET", http.StatusBadGateway, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := WithLogging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tc.method, "/", nil))

			assert.True(t, called)
			assert.Equal(t, tc.statusCode, w.Code)
			assert.Equal(t, tc.body, w.Body.String())
		})
	}
}

func TestWithLogging_RecordsRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(WithLogging(m))
	r.Get("/dishes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/dishes/1", "/dishes/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, w.Body.String(), `canteen_web_http_requests_total{code="418",route="/dishes/{id}"} 2`)
}

func TestJSONResponse_Session(t *testing.T) {
	user := &models.User{ID: "s1", Email: "chef@uni.test", Role: models.RoleStaff}

	w := httptest.NewRecorder()
	JSONResponse(w, http.StatusOK, models.SessionResponse{User: user, IsAuthenticated: true, CachedRole: models.RoleStaff})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["isAuthenticated"])
	assert.Equal(t, false, got["loading"])
	assert.Equal(t, "staff", got["cachedRole"])
	assert.NotContains(t, got, "error", "empty error is omitted")
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		status  int
		message string
		want    string
	}{
		{http.StatusBadRequest, "Invalid JSON", `{"error":"Bad Request","message":"Invalid JSON"}`},
		{http.StatusUnauthorized, "Invalid email or password", `{"error":"Unauthorized","message":"Invalid email or password"}`},
		{http.StatusBadGateway, "", `{"error":"Bad Gateway"}`},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(w, tc.status, tc.message)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}
}

func TestParseJSONBody_StaffLogin(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		want    models.StaffLoginRequest
		wantErr bool
	}{
		{"credentials", `{"email":"chef@uni.test","password":"hunter2"}`,
			models.StaffLoginRequest{Email: "chef@uni.test", Password: "hunter2"}, false},
		{"missing password", `{"email":"chef@uni.test"}`,
			models.StaffLoginRequest{Email: "chef@uni.test"}, false},
		{"truncated", `{"email":"chef@`, models.StaffLoginRequest{}, true},
		{"empty", "", models.StaffLoginRequest{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/staff-login", strings.NewReader(tc.body))

			var got models.StaffLoginRequest
			err := ParseJSONBody(req, &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr port is dropped", "10.0.0.7:51234", nil, "10.0.0.7"},
		{"ipv6 remote addr", "[::1]:12345", nil, "::1"},
		{"remote addr without port", "10.0.0.7", nil, "10.0.0.7"},
		{"first forwarded hop", "10.0.0.1:80",
			map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.2"}, "203.0.113.9"},
		{"real ip header", "10.0.0.1:80",
			map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded wins over real ip", "10.0.0.1:80",
			map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "198.51.100.4"}, "203.0.113.9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, GetClientIP(req))
		})
	}
}

func TestClientHash(t *testing.T) {
	const secret = "test-secret"

	request := func(remote, xff string) *http.Request {
		req := httptest.NewRequest("POST", "/staff-login", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		return req
	}

	direct := ClientHash(request("203.0.113.9:4000", ""), secret)
	proxied := ClientHash(request("10.0.0.1:80", "203.0.113.9, 10.0.0.2"), secret)
	other := ClientHash(request("198.51.100.4:4000", ""), secret)

	assert.Len(t, direct, 16)
	assert.NotContains(t, direct, "203.0.113.9")
	assert.Equal(t, direct, proxied, "same client behind a proxy hashes the same")
	assert.NotEqual(t, direct, other)
	assert.NotEqual(t, direct, ClientHash(request("203.0.113.9:4000", ""), "rotated"))
}
