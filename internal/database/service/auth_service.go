package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/todolistapi/backend/internal/config"
	"github.com/todolistapi/backend/internal/database/models"
	"github.com/todolistapi/backend/internal/database/repository"
	"github.com/todolistapi/backend/internal/security"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           security.PasswordHasher
	issuer           security.TokenIssuer
	refreshTokenTTL  time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	hasher security.PasswordHasher,
	issuer security.TokenIssuer,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		issuer:           issuer,
		refreshTokenTTL:  time.Duration(cfg.RefreshTokenExpiryDays) * 24 * time.Hour,
		logger:           logger,
		now:              time.Now,
	}
}

// Register creates a new user and returns an access token. Refresh tokens are
// only minted at login.
func (s *authService) Register(ctx context.Context, name, email, password string) (string, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	// Duplicate check is an exact, case-sensitive email match
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error looking up email", "error", err)
		return "", err
	}

	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return "", ErrEmailAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return "", err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return "", err
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue access token", "error", err)
		return "", err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return accessToken, nil
}

// Authenticate verifies credentials and issues a fresh token pair, persisting
// the refresh token. Unknown email and wrong password produce the same error.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error looking up email", "error", err)
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue access token", "error", err)
		return nil, err
	}

	refreshToken, err := s.mintRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue refresh token", "error", err)
		return nil, err
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		s.logger.Error("❌ [AuthService] Failed to persist refresh token", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A token can be exchanged at most once; the revoke and the
// insert of the replacement commit in one transaction.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	s.logger.Info("🔄 [AuthService] Token refresh attempt")

	storedToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			s.logger.Warn("⚠️ [AuthService] Unknown refresh token")
			return nil, ErrInvalidToken
		}
		s.logger.Error("❌ [AuthService] Database error looking up refresh token", "error", err)
		return nil, err
	}

	if !storedToken.Usable(s.now().UTC()) {
		s.logger.Warn("⚠️ [AuthService] Refresh token revoked or expired", "user_id", storedToken.UserID)
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("❌ [AuthService] Database error loading token owner", "error", err)
		return nil, err
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue access token", "error", err)
		return nil, err
	}

	nextToken, err := s.mintRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue refresh token", "error", err)
		return nil, err
	}

	if err := s.refreshTokenRepo.Rotate(ctx, refreshToken, nextToken); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Lost the race against a concurrent refresh of the same token
			s.logger.Warn("⚠️ [AuthService] Refresh token already consumed", "user_id", user.ID)
			return nil, ErrInvalidToken
		}
		s.logger.Error("❌ [AuthService] Failed to rotate refresh token", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [AuthService] Token refreshed successfully", "user_id", user.ID)
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: nextToken.Token,
	}, nil
}

// Revoke invalidates a refresh token. Revoking an unknown token is a no-op,
// so logout is idempotent.
func (s *authService) Revoke(ctx context.Context, refreshToken string) error {
	s.logger.Info("👋 [AuthService] Logout attempt")

	if strings.TrimSpace(refreshToken) == "" {
		return security.ErrInvalidInput
	}

	if err := s.refreshTokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			s.logger.Warn("⚠️ [AuthService] Token not found for logout")
			return nil
		}
		s.logger.Error("❌ [AuthService] Failed to revoke token", "error", err)
		return err
	}

	s.logger.Info("✅ [AuthService] User logged out successfully")
	return nil
}

func (s *authService) mintRefreshToken(userID uint) (*models.RefreshToken, error) {
	tokenString, err := s.issuer.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	return &models.RefreshToken{
		UserID:    userID,
		Token:     tokenString,
		ExpiresAt: s.now().UTC().Add(s.refreshTokenTTL),
		Revoked:   false,
	}, nil
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
