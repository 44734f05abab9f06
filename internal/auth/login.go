package auth

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ErrAdminNotFound is returned when no admin has the submitted email.
var ErrAdminNotFound = errors.New("admin not found")

// Authenticate checks an admin's credentials. Besides store errors it returns
// ErrAdminNotFound, ErrCredentialMismatch or an error wrapping ErrVerifier.
func Authenticate(ctx context.Context, q sqlx.ExtContext, email, password string) (*model.Admin, error) {
	admin, err := store.GetAdminByEmail(ctx, q, email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}

	if err := VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}
	return admin, nil
}
