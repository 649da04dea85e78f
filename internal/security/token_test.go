package security_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todolistapi/backend/internal/database/models"
	"github.com/todolistapi/backend/internal/security"
	"github.com/todolistapi/backend/internal/testutil"
)

func TestTokenIssuer_IssueAccessToken(t *testing.T) {
	issuer := security.NewTokenIssuer(testutil.TestConfig())

	tests := []struct {
		name    string
		user    *models.User
		wantErr error
	}{
		{
			name: "success",
			user: &models.User{ID: 42, Name: "Test User", Email: "test@example.com"},
		},
		{
			name:    "nil user",
			user:    nil,
			wantErr: security.ErrInvalidInput,
		},
		{
			name:    "empty name",
			user:    &models.User{ID: 42, Email: "test@example.com"},
			wantErr: security.ErrInvalidInput,
		},
		{
			name:    "empty email",
			user:    &models.User{ID: 42, Name: "Test User"},
			wantErr: security.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.IssueAccessToken(tt.user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestTokenIssuer_ParseAccessToken(t *testing.T) {
	cfg := testutil.TestConfig()
	issuer := security.NewTokenIssuer(cfg)

	user := &models.User{ID: 7, Name: "Test User", Email: "test@example.com"}

	t.Run("round trip preserves claims", func(t *testing.T) {
		token, err := issuer.IssueAccessToken(user)
		require.NoError(t, err)

		claims, err := issuer.ParseAccessToken(token)
		require.NoError(t, err)

		assert.Equal(t, "Test User", claims.Name)
		assert.Equal(t, "test@example.com", claims.Email)
		assert.Equal(t, cfg.JWTIssuer, claims.Issuer)
		assert.Contains(t, claims.Audience, cfg.JWTAudience)
		assert.NotEmpty(t, claims.ID)

		userID, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, uint(7), userID)
	})

	t.Run("jti is unique per token", func(t *testing.T) {
		first, err := issuer.IssueAccessToken(user)
		require.NoError(t, err)
		second, err := issuer.IssueAccessToken(user)
		require.NoError(t, err)

		firstClaims, err := issuer.ParseAccessToken(first)
		require.NoError(t, err)
		secondClaims, err := issuer.ParseAccessToken(second)
		require.NoError(t, err)

		assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.ParseAccessToken("not-a-token")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		otherCfg := testutil.TestConfig()
		otherCfg.JWTSecret = "a-completely-different-secret"
		otherIssuer := security.NewTokenIssuer(otherCfg)

		token, err := otherIssuer.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = issuer.ParseAccessToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredCfg := testutil.TestConfig()
		expiredCfg.AccessTokenExpiryMins = -5
		expiredIssuer := security.NewTokenIssuer(expiredCfg)

		token, err := expiredIssuer.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = issuer.ParseAccessToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		otherCfg := testutil.TestConfig()
		otherCfg.JWTIssuer = "someone-else"
		otherIssuer := security.NewTokenIssuer(otherCfg)

		token, err := otherIssuer.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = issuer.ParseAccessToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestTokenIssuer_IssueRefreshToken(t *testing.T) {
	issuer := security.NewTokenIssuer(testutil.TestConfig())

	first, err := issuer.IssueRefreshToken()
	require.NoError(t, err)
	second, err := issuer.IssueRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// 32 random bytes, base64url-encoded
	decoded, err := base64.URLEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}
