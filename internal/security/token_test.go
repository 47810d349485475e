package security_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partytab-backend/internal/security"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := security.NewTokenManager(secret, time.Hour)

	token, err := tm.GenerateAccessToken(42, "alice@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, security.TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_UniqueJTI(t *testing.T) {
	tm := security.NewTokenManager(secret, time.Hour)
	a, _ := tm.GenerateAccessToken(1, "")
	b, _ := tm.GenerateAccessToken(1, "")

	ca, err := tm.ValidateAccessToken(a)
	require.NoError(t, err)
	cb, err := tm.ValidateAccessToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := security.NewTokenManager(secret, time.Hour)

	t.Run("Expired", func(t *testing.T) {
		expired := security.NewTokenManager(secret, time.Nanosecond)
		token, err := expired.GenerateAccessToken(1, "")
		require.NoError(t, err)
		time.Sleep(time.Second)

		_, err = tm.ValidateAccessToken(token)
		assert.ErrorIs(t, err, security.ErrExpiredToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := security.NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour)
		token, _ := other.GenerateAccessToken(1, "")

		_, err := tm.ValidateAccessToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("WrongType", func(t *testing.T) {
		claims := security.UserClaims{
			UserID: 1,
			Type:   "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    "auth-service",
				Audience:  jwt.ClaimStrings{"api-access"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = tm.ValidateAccessToken(token)
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})

	t.Run("WrongAudience", func(t *testing.T) {
		claims := security.UserClaims{
			UserID: 1,
			Type:   security.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    "auth-service",
				Audience:  jwt.ClaimStrings{"token-refresh"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = tm.ValidateAccessToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}
