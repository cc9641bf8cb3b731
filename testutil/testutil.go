// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/canteen-vote/auth"
	"github.com/danielhkuo/canteen-vote/cliparse"
	"github.com/danielhkuo/canteen-vote/db"
	"github.com/danielhkuo/canteen-vote/middleware"
	"github.com/danielhkuo/canteen-vote/session"
)

// TestSessionSecret signs session cookies in tests
const TestSessionSecret = "test-session-secret"

// SetupTestDB creates a fresh SQLite database with the full schema. It is
// closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupTestStore returns a session store on a fresh test database
func SetupTestStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(SetupTestDB(t), db.TypeSQLite)
}

// GetTestConfig returns a standard test configuration pointing at apiURL
func GetTestConfig(apiURL string) cliparse.Config {
	return cliparse.Config{
		Port:          3319,
		APIURL:        apiURL,
		SessionSecret: TestSessionSecret,
		DatabaseType:  db.TypeSQLite,
		LoadWait:      2 * time.Second,
		SessionMaxAge: time.Hour,
	}
}

// SessionCookie returns a signed session cookie for sessionID
func SessionCookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: auth.SignSessionID(sessionID, TestSessionSecret),
	}
}

// NewSession returns a fresh session ID and its cookie
func NewSession() (string, *http.Cookie) {
	sid := auth.NewSessionID()
	return sid, SessionCookie(sid)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form post
func MakeFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks the status and Location of a redirect
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, status int, location string) {
	t.Helper()
	AssertStatus(t, w, status)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
