// Package session keeps the server-side record behind an admin's cookie.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Session marks an admin as authenticated until it expires or is deleted.
type Session struct {
	Token     string
	AdminID   int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store creates, looks up and destroys sessions.
type Store interface {
	Create(ctx context.Context, adminID int64, ttl time.Duration) (*Session, error)
	// Get returns nil without an error when the token is unknown or expired.
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SQLStore keeps sessions in the sessions table.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

type row struct {
	Token     string `db:"token"`
	AdminID   int64  `db:"admin_id"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// Create starts a new session for adminID.
func (s *SQLStore) Create(ctx context.Context, adminID int64, ttl time.Duration) (*Session, error) {
	if adminID <= 0 {
		return nil, errors.New("invalid admin id")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}

	now := s.now()
	sess := &Session{
		Token:     uuid.NewString(),
		AdminID:   adminID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO sessions (token, admin_id, created_at, expires_at) VALUES (?, ?, ?, ?)`),
		sess.Token, sess.AdminID, sess.CreatedAt.Unix(), sess.ExpiresAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get looks up a live session by token.
func (s *SQLStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	var r row
	err := s.db.GetContext(ctx, &r, s.db.Rebind(
		`SELECT token, admin_id, created_at, expires_at FROM sessions WHERE token = ?`), token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	sess := &Session{
		Token:     r.Token,
		AdminID:   r.AdminID,
		CreatedAt: time.Unix(r.CreatedAt, 0),
		ExpiresAt: time.Unix(r.ExpiresAt, 0),
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}
	return sess, nil
}

// Delete destroys a session. Unknown tokens are ignored.
func (s *SQLStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE token = ?`), token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired at or before now.
func (s *SQLStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// Sweep deletes expired sessions every interval until ctx is cancelled.
// removed, if not nil, is called with the count of each non-empty sweep.
func Sweep(ctx context.Context, store Store, interval time.Duration, removed func(n int64)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.DeleteExpired(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("failed to sweep expired sessions", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
				if removed != nil {
					removed(n)
				}
			}
		}
	}
}
