package auth

import (
	"sync"

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

var (
	dummyOnce sync.Once
	dummyHash string
)

// CompareDummy spends one bcrypt comparison so unknown usernames cost the same
// as known ones. The dummy hash is built once, at the cost of the first call.
func CompareDummy(plain string, cost int) {
	dummyOnce.Do(func() {
		dummyHash = newDummyHash(cost)
	})
	_ = ComparePassword(dummyHash, plain)
}

// newDummyHash never returns "": an empty hash would make the comparison return
// immediately.
func newDummyHash(cost int) string {
	if hash, err := HashPassword("dummy-password-for-timing", cost); err == nil {
		return hash
	}
	hash, _ := HashPassword("dummy-password-for-timing", bcrypt.DefaultCost)
	return hash
}
