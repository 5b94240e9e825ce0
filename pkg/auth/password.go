package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12
)

// HashPassword hashes a plaintext password with bcrypt. Used by account
// provisioning and by test fixtures.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword compares a plaintext password against a stored hash. A nil
// or empty stored hash is always a mismatch and never reaches bcrypt: there
// is nothing to compare against and the comparison cost is not worth paying.
// A mismatch is a normal outcome, not an error.
func VerifyPassword(password string, storedHash *string) bool {
	if storedHash == nil || *storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*storedHash), []byte(password)) == nil
}
