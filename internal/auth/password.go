package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced on registration and password change.
const MinPasswordLength = 6

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckUnknownUser spends the same bcrypt work as CheckPassword when no user
// matched, so a failed login takes as long for an unknown email as for a wrong
// password. It always returns false.
func CheckUnknownUser(password string) bool {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("guild-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
