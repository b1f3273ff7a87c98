package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// staffTokenRepository implements StaffTokenRepository interface
type staffTokenRepository struct {
	db *gorm.DB
}

// NewStaffTokenRepository creates a new staff token repository
func NewStaffTokenRepository(db *gorm.DB) StaffTokenRepository {
	return &staffTokenRepository{db: db}
}

// Create creates a new staff token
func (r *staffTokenRepository) Create(ctx context.Context, token *models.StaffToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByHash gets a staff token by its SHA-256 hash
func (r *staffTokenRepository) GetByHash(ctx context.Context, hash string) (*models.StaffToken, error) {
	var token models.StaffToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// GetByID gets a staff token by ID
func (r *staffTokenRepository) GetByID(ctx context.Context, id uint) (*models.StaffToken, error) {
	var token models.StaffToken
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke marks a staff token inactive
func (r *staffTokenRepository) Revoke(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.StaffToken{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// TouchLastUsed records when a token was last used for a scan
func (r *staffTokenRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.StaffToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

// List lists all staff tokens, newest first
func (r *staffTokenRepository) List(ctx context.Context) ([]models.StaffToken, error) {
	var tokens []models.StaffToken
	err := r.db.WithContext(ctx).Order("issued_at DESC").Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
