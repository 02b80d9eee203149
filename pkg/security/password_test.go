package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/security"
)

func fastArgon() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher := security.NewHasher(fastArgon())
	hash, err := hasher.Hash("very-secure-password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$"))
	assert.False(t, hasher.NeedsRehash(hash))

	ok, err := security.Verify("very-secure-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.Verify("bogus-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := security.NewHasher(fastArgon()).Hash("")
	require.Error(t, err)
}

func TestNeedsRehashOnCostChange(t *testing.T) {
	hash, err := security.NewHasher(fastArgon()).Hash("pw-123456")
	require.NoError(t, err)

	stronger := fastArgon()
	stronger.ArgonTime = 2
	assert.True(t, security.NewHasher(stronger).NeedsRehash(hash))
}

func TestVerifyLegacyBcryptHash(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, security.NewHasher(fastArgon()).NeedsRehash(string(legacy)))

	ok, err := security.Verify("admin123", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.Verify("admin124", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBadHash(t *testing.T) {
	for _, encoded := range []string{"not-a-hash", "$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA", "$argon2id$v=19$garbage$AAAA$AAAA"} {
		_, err := security.Verify("irrelevant", encoded)
		assert.ErrorIs(t, err, security.ErrInvalidHash, encoded)
	}
}
