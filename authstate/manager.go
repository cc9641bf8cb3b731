// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package authstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/models"
)

const (
	DefaultLoadWait     = 5 * time.Second
	DefaultFetchTimeout = 15 * time.Second
	// results nobody came back for are dropped after this long
	pendingTTL = time.Minute
)

type SessionClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// Manager owns the auth state of every browser session. It is the only
// writer of that state: page loads, login hydration and logout all go
// through it.
type Manager struct {
	fetcher      Fetcher
	clearer      SessionClearer
	loadWait     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	base context.Context
	stop context.CancelFunc

	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time
}

// entry is the per-session slot: at most one fetch in flight and at most
// one result waiting for the next page load.
type entry struct {
	inflight  *fetch
	pending   *State
	pendingAt time.Time
}

type fetch struct {
	done   chan struct{}
	cancel context.CancelFunc
	state  State
	// set under mu when Hydrate cancels the fetch
	hydrated *models.User
}

type Option func(*Manager)

// WithLoadWait bounds how long Load blocks before reporting Loading
func WithLoadWait(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.loadWait = d
		}
	}
}

// WithFetchTimeout bounds a single profile fetch
func WithFetchTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.fetchTimeout = d
		}
	}
}

func NewManager(fetcher Fetcher, clearer SessionClearer, opts ...Option) *Manager {
	base, stop := context.WithCancel(context.Background())
	m := &Manager{
		fetcher:      fetcher,
		clearer:      clearer,
		loadWait:     DefaultLoadWait,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		base:         base,
		stop:         stop,
		entries:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastSweep = m.now()
	return m
}

// Load resolves the auth state for one page load. A hydrated or
// background-completed result is consumed without a fetch; otherwise a
// profile fetch runs (one per session at a time). If it outlasts the load
// wait, Loading is reported and the result is kept for the next load. A
// load waiting on a fetch that Hydrate cancels returns the hydrated user.
func (m *Manager) Load(ctx context.Context, sessionID string) State {
	if sessionID == "" {
		return State{Err: apiclient.ErrNotAuthenticated}
	}

	m.mu.Lock()
	m.sweepLocked()
	e := m.entries[sessionID]
	if e != nil && e.pending != nil {
		st := *e.pending
		e.pending = nil
		m.dropIfIdleLocked(sessionID, e)
		m.mu.Unlock()
		return st
	}
	if e == nil {
		e = &entry{}
		m.entries[sessionID] = e
	}
	f := e.inflight
	if f == nil {
		f = m.startLocked(ctx, sessionID, e)
	}
	m.mu.Unlock()

	timer := time.NewTimer(m.loadWait)
	defer timer.Stop()

	select {
	case <-f.done:
		m.mu.Lock()
		defer m.mu.Unlock()
		if f.hydrated != nil {
			// The hydrated result stays pending for the next page load
			return State{User: f.hydrated}
		}
		if e.pending == &f.state {
			e.pending = nil
			m.dropIfIdleLocked(sessionID, e)
		}
		return f.state
	case <-timer.C:
		slog.Info("profile still loading", "wait", m.loadWait)
		return State{Loading: true}
	case <-ctx.Done():
		return State{Loading: true}
	}
}

// startLocked launches the fetch for a session. The fetch is owned by the
// manager, not by the request that triggered it, and carries the request's
// span for tracing.
func (m *Manager) startLocked(ctx context.Context, sessionID string, e *entry) *fetch {
	fctx := trace.ContextWithSpan(m.base, trace.SpanFromContext(ctx))
	fctx, cancel := context.WithTimeout(fctx, m.fetchTimeout)
	f := &fetch{done: make(chan struct{}), cancel: cancel}
	e.inflight = f
	go m.run(fctx, sessionID, e, f)
	return f
}

func (m *Manager) run(ctx context.Context, sessionID string, e *entry, f *fetch) {
	user, err := m.fetcher.FetchProfile(ctx, sessionID)
	f.cancel()

	if err != nil {
		f.state = State{Err: err}
	} else {
		f.state = State{User: &user}
	}

	m.mu.Lock()
	// A logout or hydrate may have superseded this fetch; its result is then discarded.
	if cur := m.entries[sessionID]; cur == e && e.inflight == f {
		e.inflight = nil
		e.pending = &f.state
		e.pendingAt = m.now()
	}
	m.mu.Unlock()
	close(f.done)

	if err != nil {
		slog.Debug("profile fetch failed", "outcome", apiclient.Classify(err))
	}
}

// Hydrate sets the user right after a successful login or setup round trip,
// so the next page load does not fetch the profile again.
func (m *Manager) Hydrate(sessionID string, user models.User) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[sessionID]
	if e == nil {
		e = &entry{}
		m.entries[sessionID] = e
	}
	u := user
	if e.inflight != nil {
		e.inflight.hydrated = &u
		e.inflight.cancel()
		e.inflight = nil
	}
	e.pending = &State{User: &u}
	e.pendingAt = m.now()
}

// Logout cancels any in-flight fetch for the session, drops its pending state
// and clears the stored token and role.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	if e := m.entries[sessionID]; e != nil {
		if e.inflight != nil {
			e.inflight.cancel()
		}
		delete(m.entries, sessionID)
	}
	m.mu.Unlock()

	return m.clearer.Clear(ctx, sessionID)
}

// Close cancels every in-flight fetch
func (m *Manager) Close() {
	m.stop()
}

func (m *Manager) dropIfIdleLocked(sessionID string, e *entry) {
	if e.inflight == nil && e.pending == nil && m.entries[sessionID] == e {
		delete(m.entries, sessionID)
	}
}

func (m *Manager) sweepLocked() {
	now := m.now()
	if now.Sub(m.lastSweep) < pendingTTL {
		return
	}
	m.lastSweep = now
	for sid, e := range m.entries {
		if e.inflight == nil && e.pending != nil && now.Sub(e.pendingAt) > pendingTTL {
			delete(m.entries, sid)
		}
	}
}
