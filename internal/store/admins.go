package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateAdmin inserts an admin account. Only the CLI calls this.
func CreateAdmin(ctx context.Context, q sqlx.ExtContext, email, passwordHash string) (*model.Admin, error) {
	id, err := insertReturningID(ctx, q,
		`INSERT INTO admins (email, password) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}
	return &model.Admin{ID: id, Email: email, PasswordHash: passwordHash}, nil
}

// GetAdminByEmail returns the admin with the given email, or nil if none exists.
func GetAdminByEmail(ctx context.Context, q sqlx.ExtContext, email string) (*model.Admin, error) {
	a := &model.Admin{}
	err := sqlx.GetContext(ctx, q, a, q.Rebind(
		`SELECT id, email, password FROM admins WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by email: %w", err)
	}
	return a, nil
}
