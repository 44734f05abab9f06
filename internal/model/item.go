package model

import (
	"errors"
	"time"
)

// Item is a lost or found report.
type Item struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	UserID      int64     `db:"user_id"`
	PhotoMime   *string   `db:"photo_mime"`
	CreatedAt   time.Time `db:"created_at"`
}

// ItemListing is an item joined with the user who reported it.
type ItemListing struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	HasPhoto    bool      `db:"has_photo"`
	CreatedAt   time.Time `db:"created_at"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
}

// Item statuses.
const (
	StatusLost  = "Lost"
	StatusFound = "Found"
)

// ErrInvalidStatus is returned when a status is neither Lost nor Found.
var ErrInvalidStatus = errors.New("invalid status")

// ValidateStatus reports ErrInvalidStatus unless status is exactly Lost or Found.
func ValidateStatus(status string) error {
	switch status {
	case StatusLost, StatusFound:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Report is the input of a single report submission.
type Report struct {
	Name        string
	Email       string
	Title       string
	Description string
	Status      string

	// Photo is optional; PhotoMime is set whenever Photo is.
	Photo     []byte
	PhotoMime string
}
