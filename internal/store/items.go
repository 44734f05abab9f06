package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateItem inserts an item owned by userID. The photo is optional.
func CreateItem(ctx context.Context, q sqlx.ExtContext, userID int64, title, description, status string, photo []byte, photoMime string) (int64, error) {
	if err := model.ValidateStatus(status); err != nil {
		return 0, err
	}

	var photoArg, mimeArg any
	if len(photo) > 0 {
		photoArg, mimeArg = photo, photoMime
	}

	id, err := insertReturningID(ctx, q,
		`INSERT INTO items (title, description, status, user_id, photo, photo_mime)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, status, userID, photoArg, mimeArg,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, q sqlx.ExtContext, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := sqlx.GetContext(ctx, q, item, q.Rebind(
		`SELECT id, title, description, status, user_id, photo_mime, created_at
		 FROM items WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns every item joined with its reporter, newest first.
func ListItems(ctx context.Context, q sqlx.ExtContext) ([]model.ItemListing, error) {
	var items []model.ItemListing
	err := sqlx.SelectContext(ctx, q, &items,
		`SELECT items.id, items.title, items.description, items.status,
		        items.photo IS NOT NULL AS has_photo, items.created_at,
		        users.name, users.email
		 FROM items
		 JOIN users ON items.user_id = users.id
		 ORDER BY items.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// UpdateItemStatus sets an item's status. Updating a missing item is a no-op.
func UpdateItemStatus(ctx context.Context, q sqlx.ExtContext, id int64, status string) error {
	if err := model.ValidateStatus(status); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE items SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return nil
}

// DeleteItem removes an item. Deleting a missing item is a no-op.
func DeleteItem(ctx context.Context, q sqlx.ExtContext, id int64) error {
	_, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo and its MIME type. Both are empty when
// the item is missing or has no photo.
func GetItemPhoto(ctx context.Context, q sqlx.ExtContext, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := q.QueryRowxContext(ctx, q.Rebind(
		`SELECT photo, photo_mime FROM items WHERE id = ?`), id,
	).Scan(&photo, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}
