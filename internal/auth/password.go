package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// NewDecoyHash hashes a random password at cost. Comparing against it takes
// as long as checking a stored password hashed at the same cost.
func NewDecoyHash(cost int) string {
	hashed, err := HashPassword(uuid.NewString(), cost)
	if err != nil {
		// Only an out of range cost fails; registration fails the same way.
		hashed, _ = HashPassword(uuid.NewString(), bcrypt.DefaultCost)
	}
	return hashed
}

// BurnPasswordCheck performs a comparison against decoy that always fails.
func BurnPasswordCheck(decoy, plain string) {
	_ = ComparePassword(decoy, plain)
}
