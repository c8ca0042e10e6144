// Package credentials is the opaque credential-check capability. Stored
// secrets are bcrypt hashes; comparison is constant-time by construction.
package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost 12 keeps a single check under ~300ms on commodity hardware
// while staying expensive enough for offline attacks.
const hashCost = 12

var ErrMismatch = errors.New("credentials do not match")

func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
