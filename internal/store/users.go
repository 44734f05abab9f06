package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateUser inserts a reporter with an empty password placeholder.
func CreateUser(ctx context.Context, q sqlx.ExtContext, name, email string) (int64, error) {
	id, err := insertReturningID(ctx, q,
		`INSERT INTO users (name, email, password) VALUES (?, ?, '')`,
		name, email,
	)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q sqlx.ExtContext, id int64) (*model.User, error) {
	u := &model.User{}
	err := sqlx.GetContext(ctx, q, u, q.Rebind(
		`SELECT id, name, email, password, created_at FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the oldest user with the given email. Emails are not
// unique in the schema, so the first match wins.
func GetUserByEmail(ctx context.Context, q sqlx.ExtContext, email string) (*model.User, error) {
	u := &model.User{}
	err := sqlx.GetContext(ctx, q, u, q.Rebind(
		`SELECT id, name, email, password, created_at
		 FROM users WHERE email = ? ORDER BY id LIMIT 1`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// FindOrCreateUser returns the ID of the user with the given email, creating
// the user first if none exists. created reports whether a row was inserted.
func FindOrCreateUser(ctx context.Context, q sqlx.ExtContext, name, email string) (id int64, created bool, err error) {
	existing, err := GetUserByEmail(ctx, q, email)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	id, err = CreateUser(ctx, q, name, email)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
