// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/dashboard", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("/dashboard", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/dashboard", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "404")))
}

func TestObserveUpstream(t *testing.T) {
	m := New(prometheus.NewRegistry())
	classify := func(err error) string { return "network" }

	m.ObserveUpstream("profile", nil, classify)
	m.ObserveUpstream("profile", errors.New("boom"), classify)
	m.ObserveUpstream("profile", errors.New("boom"), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("profile", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("profile", "network")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("profile", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", http.StatusOK, time.Millisecond)
	m.AuthEvent("callback", "success")
	m.ObserveUpstream("profile", nil, nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.AuthEvent("staff_login", "success")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `canteen_web_auth_events_total{flow="staff_login",outcome="success"} 1`))
}
