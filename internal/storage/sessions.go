package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"budget-calculator/internal/models"
)

const (
	insertSessionSQL = `INSERT INTO sessions (token, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)`
	selectSessionSQL = `
		SELECT u.id, u.username, u.password_hash, u.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN user u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?`
	renewSessionSQL         = `UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?`
	deleteSessionSQL        = `DELETE FROM sessions WHERE token = ?`
	deleteExpiredSessionSQL = `DELETE FROM sessions WHERE expires_at <= ?`
)

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// CreateSession creates a new session for a user.
func (db *DB) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	now := time.Now().UTC()
	if _, err := db.conn.ExecContext(ctx, insertSessionSQL, token, userID, expiresAt.UTC(), now); err != nil {
		return fmt.Errorf("insert session for user %d: %w", userID, err)
	}
	return nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
// Unknown and expired tokens both yield ErrNotFound.
func (db *DB) ValidateSessionWithInfo(ctx context.Context, token string) (*SessionInfo, error) {
	row := db.conn.QueryRowContext(ctx, selectSessionSQL, token, time.Now().UTC())

	var u models.User
	var lastActivity, expiresAt time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &lastActivity, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &SessionInfo{
		User:         &u,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error {
	now := time.Now().UTC()
	if _, err := db.conn.ExecContext(ctx, renewSessionSQL, now, newExpiresAt.UTC(), token); err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return nil
}

// DeleteSession removes a session by token. Deleting an unknown token is not an error.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	if _, err := db.conn.ExecContext(ctx, deleteSessionSQL, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanExpiredSessions removes all expired sessions and reports how many were removed.
func (db *DB) CleanExpiredSessions(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, deleteExpiredSessionSQL, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
