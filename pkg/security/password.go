package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

// ErrPasswordMismatch is returned by Compare for a wrong password or a
// malformed stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordHasher hashes user passwords and checks logins against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	switch {
	case len(password) < MinPasswordLen:
		return "", apperrors.Validation("password must be at least %d characters", MinPasswordLen)
	case len(password) > MaxPasswordLen:
		return "", apperrors.Validation("password must be at most %d bytes", MaxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return string(hash), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
