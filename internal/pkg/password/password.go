package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	cost      = 12 // bcrypt cost factor
	MinLength = 6
)

var ErrTooShort = errors.New("password must be at least 6 characters")

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	if len(password) < MinLength {
		return "", ErrTooShort
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
