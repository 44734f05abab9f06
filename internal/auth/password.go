package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Password verification outcomes.
var (
	ErrCredentialMismatch = errors.New("incorrect password")
	ErrVerifier           = errors.New("error checking password")
)

// argon2idPrefix marks PHC-style hashes: argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>.
const argon2idPrefix = "argon2id$"

// HashPassword returns a bcrypt hash suitable for the admins table.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks password against a stored bcrypt or argon2id hash.
// It returns nil on a match, ErrCredentialMismatch on a mismatch and an error
// wrapping ErrVerifier when the hash cannot be checked at all.
func VerifyPassword(hash, password string) error {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return verifyArgon2id(hash, password)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrCredentialMismatch
	default:
		return fmt.Errorf("%w: %v", ErrVerifier, err)
	}
}

func verifyArgon2id(encoded, password string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		return fmt.Errorf("%w: malformed argon2id hash", ErrVerifier)
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return fmt.Errorf("%w: unsupported argon2 version %q", ErrVerifier, parts[1])
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return fmt.Errorf("%w: invalid argon2 parameters: %v", ErrVerifier, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return fmt.Errorf("%w: invalid argon2 salt", ErrVerifier)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(want) < 16 {
		return fmt.Errorf("%w: invalid argon2 hash", ErrVerifier)
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrCredentialMismatch
	}
	return nil
}
