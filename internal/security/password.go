package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher provides one-way salted hashing for user credentials
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

type bcryptHasher struct {
	cost int
}

// NewPasswordHasher creates a bcrypt-backed password hasher
func NewPasswordHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	if strings.TrimSpace(plaintext) == "" {
		return "", ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch or a
// malformed hash is reported as false, never as an error.
func (h *bcryptHasher) Verify(plaintext, hash string) (bool, error) {
	if strings.TrimSpace(plaintext) == "" {
		return false, ErrInvalidInput
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return false, nil
	}

	return true, nil
}

// Security errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid or expired token")
)
