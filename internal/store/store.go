// Package store holds the SQL statements behind every page of the portal.
// Functions take an sqlx.ExtContext so they run the same on a pool or inside
// a transaction, and on both SQLite and PostgreSQL placeholders.
package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// insertReturningID runs an INSERT and returns the generated primary key.
// RETURNING works on both supported dialects, unlike LastInsertId.
func insertReturningID(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRowxContext(ctx, q.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}
