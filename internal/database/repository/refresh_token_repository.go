package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/todolistapi/backend/internal/database/models"
)

// RefreshTokenRepository defines the interface for refresh token operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	Rotate(ctx context.Context, oldToken string, next *models.RefreshToken) error
	RevokeAllUserTokens(ctx context.Context, userID uint) error
	DeleteExpiredTokens(ctx context.Context) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository instance
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindByToken looks a stored token up by exact string match, regardless of
// revocation or expiry. Callers decide whether the row is still usable.
func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&refreshToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &refreshToken, nil
}

// RevokeToken flips the revoked flag with a conditional update. Only a row
// that is still unrevoked counts as revoked by this call, so two concurrent
// revocations of the same token cannot both succeed.
func (r *refreshTokenRepository) RevokeToken(ctx context.Context, token string) error {
	return revokeUnrevoked(r.db.WithContext(ctx), token)
}

// Rotate revokes the old token and persists its replacement in a single
// transaction. Fails with ErrTokenNotFound when the old token is missing or
// was already revoked by a concurrent refresh.
func (r *refreshTokenRepository) Rotate(ctx context.Context, oldToken string, next *models.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revokeUnrevoked(tx, oldToken); err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}

func revokeUnrevoked(tx *gorm.DB, token string) error {
	result := tx.Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", token, false).
		Update("revoked", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

func (r *refreshTokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.RefreshToken{}).Error
}

// Repository errors
var (
	ErrTokenNotFound = errors.New("token not found")
)
