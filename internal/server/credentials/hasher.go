// Package credentials hashes and verifies account passwords with bcrypt.
package credentials

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// Hasher produces salted one-way password hashes.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// the dummy hash is only compared against, its plaintext does not matter
	dummy, _ := bcrypt.GenerateFromPassword([]byte("accountkeeper-dummy-password"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

// Cost reports the bcrypt work factor in use.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a bcrypt hash of password. Each call uses a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.Validationf("password must be at most %d bytes", MaxPasswordBytes)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash never
// matches.
func (h *Hasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DummyVerify spends the same time as Verify without a real hash, so that an
// unknown username costs as much as a wrong password.
func (h *Hasher) DummyVerify(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}

// ValidatePassword rejects passwords bcrypt cannot hash.
func ValidatePassword(password string) error {
	if password == "" {
		return common.Validationf("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return common.Validationf("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}
