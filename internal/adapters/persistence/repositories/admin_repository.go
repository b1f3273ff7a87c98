package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// adminUserRepository implements AdminUserRepository interface
type adminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository creates a new admin user repository
func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

// Create creates a new admin user
func (r *adminUserRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// GetByID gets an admin user by ID
func (r *adminUserRepository) GetByID(ctx context.Context, id uint) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByUsername gets an admin user by username
func (r *adminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Count counts admin users
func (r *adminUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error
	return count, err
}

// refreshTokenRepository implements RefreshTokenRepository interface
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create creates a new refresh token
func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByHash gets a refresh token by its hash
func (r *refreshTokenRepository) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).Preload("Admin").Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke marks a refresh token revoked
func (r *refreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked_at", time.Now()).Error
}

// RevokeAllForAdmin revokes every live refresh token for an admin
func (r *refreshTokenRepository) RevokeAllForAdmin(ctx context.Context, adminID uint) error {
	return r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("admin_id = ? AND revoked_at IS NULL", adminID).
		Update("revoked_at", time.Now()).Error
}

// DeleteExpired hard-deletes expired refresh tokens
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
