package credentials

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	return NewHasher(bcrypt.MinCost)
}

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, p := range []string{"p1", "correct horse battery staple", "пароль", strings.Repeat("x", MaxPasswordBytes)} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(p, hash), "password %q must verify", p)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hash, err := h.Hash("p2")
	require.NoError(t, err)

	assert.False(t, h.Verify("p1", hash))
	assert.False(t, h.Verify("", hash))
	assert.False(t, h.Verify("P2", hash))
}

func TestHash_SaltedPerCall(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "hashes of the same password must differ")
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestVerify_MalformedHashIsFalse(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, hash := range []string{"", "plaintext", "$2a$", "$2a$10$tooShort"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("anything", hash))
		})
	}
}

func TestHash_RejectsUnhashablePasswords(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = h.Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestNewHasher_CostFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).Cost())
}

func TestDummyVerify_DoesNotPanic(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)
	assert.NotPanics(t, func() { h.DummyVerify("whatever") })
}
