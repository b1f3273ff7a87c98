package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// messClosureRepository implements MessClosureRepository interface
type messClosureRepository struct {
	db *gorm.DB
}

// NewMessClosureRepository creates a new mess closure repository
func NewMessClosureRepository(db *gorm.DB) MessClosureRepository {
	return &messClosureRepository{db: db}
}

// Create creates a new mess closure
func (r *messClosureRepository) Create(ctx context.Context, closure *models.MessClosure) error {
	return r.db.WithContext(ctx).Create(closure).Error
}

// HasActiveClosure checks whether any closure covers the given day
func (r *messClosureRepository) HasActiveClosure(ctx context.Context, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessClosure{}).
		Where("from_date <= ? AND to_date >= ?", day, day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasOverlap checks whether any closure intersects the given range
func (r *messClosureRepository) HasOverlap(ctx context.Context, fromDate, toDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessClosure{}).
		Where("from_date <= ? AND to_date >= ?", toDate, fromDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List lists closures, newest first
func (r *messClosureRepository) List(ctx context.Context, limit, offset int) ([]models.MessClosure, int64, error) {
	var closures []models.MessClosure
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MessClosure{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("from_date DESC").Limit(limit).Offset(offset).Find(&closures).Error
	if err != nil {
		return nil, 0, err
	}
	return closures, total, nil
}
