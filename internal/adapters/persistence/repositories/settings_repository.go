package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the single settings row, creating it if missing
func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	settings := models.Settings{ID: 1, QRSecretVersion: 1}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&settings).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).First(&settings, 1).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// BumpQRSecretVersion increments the QR secret version and returns the new value
func (r *settingsRepository) BumpQRSecretVersion(ctx context.Context) (int, error) {
	err := r.db.WithContext(ctx).Model(&models.Settings{}).
		Where("id = ?", 1).
		Update("qr_secret_version", gorm.Expr("qr_secret_version + 1")).Error
	if err != nil {
		return 0, err
	}

	var settings models.Settings
	if err := r.db.WithContext(ctx).First(&settings, 1).Error; err != nil {
		return 0, err
	}
	return settings.QRSecretVersion, nil
}
