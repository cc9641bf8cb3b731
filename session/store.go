// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/canteen-vote/db"
	"github.com/danielhkuo/canteen-vote/models"
)

// Storage keys
const (
	KeyToken = "token"
	KeyRole  = "userRole"
)

// Store persists per-session values. It plays the part of browser storage:
// values live until cleared, with no expiry checks on read.
type Store struct {
	db     *sql.DB
	dbType string
	now    func() time.Time
}

func NewStore(conn *sql.DB, dbType string) *Store {
	return &Store{db: conn, dbType: dbType, now: time.Now}
}

func (s *Store) q(query string) string {
	return db.Rebind(s.dbType, query)
}

// SetToken stores the session credential
func (s *Store) SetToken(ctx context.Context, sessionID, token string) error {
	return s.set(ctx, sessionID, KeyToken, token)
}

// Token returns the stored credential, ok is false when none is stored
func (s *Store) Token(ctx context.Context, sessionID string) (string, bool, error) {
	return s.get(ctx, sessionID, KeyToken)
}

// SetRole caches the user's role. The value is advisory only.
func (s *Store) SetRole(ctx context.Context, sessionID string, role models.Role) error {
	return s.set(ctx, sessionID, KeyRole, string(role))
}

// Role returns the cached role
func (s *Store) Role(ctx context.Context, sessionID string) (models.Role, bool, error) {
	v, ok, err := s.get(ctx, sessionID, KeyRole)
	return models.Role(v), ok, err
}

// Clear removes both the token and role keys
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM session_value WHERE session_id = ? AND name IN (?, ?)
	`), sessionID, KeyToken, KeyRole)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Prune deletes values not written for longer than olderThan
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM session_value WHERE updated_at < ?
	`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) set(ctx context.Context, sessionID, name, value string) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO session_value (session_id, name, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`), sessionID, name, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, sessionID, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT value FROM session_value WHERE session_id = ? AND name = ?
	`), sessionID, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", name, err)
	}
	return value, true, nil
}
