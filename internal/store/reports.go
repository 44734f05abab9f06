package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

// ReportResult identifies the rows touched by a report submission.
type ReportResult struct {
	UserID  int64
	ItemID  int64
	NewUser bool
}

// SubmitReport stores a report in one transaction: the reporter is found or
// created by email first, then the item is inserted referencing them.
func SubmitReport(ctx context.Context, db *sqlx.DB, r model.Report) (*ReportResult, error) {
	if err := model.ValidateStatus(r.Status); err != nil {
		return nil, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	userID, created, err := FindOrCreateUser(ctx, tx, r.Name, r.Email)
	if err != nil {
		return nil, err
	}

	itemID, err := CreateItem(ctx, tx, userID, r.Title, r.Description, r.Status, r.Photo, r.PhotoMime)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing report: %w", err)
	}

	return &ReportResult{UserID: userID, ItemID: itemID, NewUser: created}, nil
}
