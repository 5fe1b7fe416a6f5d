package password

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmpty = errors.New("secret cannot be empty")

// Hash returns the bcrypt hash of secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmpty
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether secret matches hash. bcrypt compares in constant time.
func Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("dummy-secret-for-timing"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return string(h)
})

// Burn spends the same work as Verify against a hash nobody owns, so a lookup
// miss costs as much as a wrong secret.
func Burn(secret string) {
	_ = Verify(secret, dummyHash())
}
