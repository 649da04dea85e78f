package security

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/todolistapi/backend/internal/config"
	"github.com/todolistapi/backend/internal/database/models"
)

// AccessTokenClaims is the fixed claim set carried by every access token.
// Subject holds the user id as a decimal string.
type AccessTokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *AccessTokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// TokenIssuer creates signed access tokens and opaque refresh tokens
type TokenIssuer interface {
	IssueAccessToken(user *models.User) (string, error)
	IssueRefreshToken() (string, error)
	ParseAccessToken(tokenString string) (*AccessTokenClaims, error)
}

type jwtTokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
}

// NewTokenIssuer creates a token issuer signing HS256 tokens with the
// configured secret, issuer, audience and expiry.
func NewTokenIssuer(cfg *config.Config) TokenIssuer {
	return &jwtTokenIssuer{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		expiry:   time.Duration(cfg.AccessTokenExpiryMins) * time.Minute,
		now:      time.Now,
	}
}

func (i *jwtTokenIssuer) IssueAccessToken(user *models.User) (string, error) {
	if user == nil || strings.TrimSpace(user.Name) == "" || strings.TrimSpace(user.Email) == "" {
		return "", ErrInvalidInput
	}

	now := i.now().UTC()
	claims := &AccessTokenClaims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// IssueRefreshToken generates a cryptographically random opaque token. The
// token carries no user data; the binding to a user lives in the stored row.
func (i *jwtTokenIssuer) IssueRefreshToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

func (i *jwtTokenIssuer) ParseAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithTimeFunc(i.now),
	)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
