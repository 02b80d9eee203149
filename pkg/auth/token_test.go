package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "backoffice", ExpirationMinutes: minutes}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: userID,
		Email:  "admin@shop.ma",
		Name:   "Admin",
		Role:   enums.AdminRoleAdmin,
		JTI:    "session-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin@shop.ma", claims.Email)
	assert.Equal(t, enums.AdminRoleAdmin, claims.Role)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintGeneratesJTIWhenMissing(t *testing.T) {
	cfg := testJWTConfig(5)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.AdminRoleAdmin})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.AdminRoleAdmin})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token+"x")
	require.ErrorIs(t, err, ErrTokenInvalid)

	other := cfg
	other.Issuer = "someone-else"
	_, err = ParseAccessToken(other, token)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = ParseAccessTokenAllowExpired(other, token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	wrongKey := cfg
	wrongKey.Secret = "another-secret"
	_, err = ParseAccessTokenAllowExpired(wrongKey, token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseRejectsForeignAlgorithm(t *testing.T) {
	cfg := testJWTConfig(10)
	userID := uuid.New()
	claims := AccessTokenClaims{
		UserID: userID,
		Role:   enums.AdminRoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID.String(),
			ID:        "s-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaimsValidateSubject(t *testing.T) {
	userID := uuid.New()
	claims := AccessTokenClaims{UserID: userID, Role: enums.AdminRoleAdmin}
	claims.ID = "s-1"
	claims.Subject = uuid.NewString()
	require.Error(t, claims.Validate())

	claims.Subject = userID.String()
	require.NoError(t, claims.Validate())
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.AdminRoleAdmin,
		JTI:    "old-session",
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.ErrorIs(t, err, ErrTokenExpired)

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "old-session", claims.ID)
}

func TestMintAccessTokenRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig(5)
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: ""})
	require.Error(t, err)

	_, err = MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.AdminRoleAdmin})
	require.Error(t, err)
}
