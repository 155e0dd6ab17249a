package lifecycle

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials are the generated admin login of a new API project.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// newSecret returns a 256-bit signing secret.
func newSecret() (string, error) {
	return randomHex(32)
}

// newPassword returns a 24 character password.
func newPassword() (string, error) {
	return randomHex(12)
}

func hashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return string(hash), nil
}
