package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"attendance-tracker/internal/model"
)

// ErrInvalidCredentials is returned for an unknown login or a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword salts and hashes a password. A cost outside bcrypt's range
// falls back to the library default. A password over 72 bytes is a
// validation error.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.Invalidf("password must be at most %d bytes", model.MaxPasswordBytes)
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
