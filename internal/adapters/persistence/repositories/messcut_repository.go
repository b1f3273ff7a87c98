package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// messCutRepository implements MessCutRepository interface
type messCutRepository struct {
	db *gorm.DB
}

// NewMessCutRepository creates a new mess cut repository
func NewMessCutRepository(db *gorm.DB) MessCutRepository {
	return &messCutRepository{db: db}
}

// Create creates a new mess cut
func (r *messCutRepository) Create(ctx context.Context, cut *models.MessCut) error {
	return r.db.WithContext(ctx).Create(cut).Error
}

// HasActiveCut checks whether the student has a cut covering the given day
func (r *messCutRepository) HasActiveCut(ctx context.Context, studentID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessCut{}).
		Where("student_id = ? AND from_date <= ? AND to_date >= ?", studentID, day, day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasOverlap checks whether the student has a cut intersecting the given range
func (r *messCutRepository) HasOverlap(ctx context.Context, studentID uint, fromDate, toDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessCut{}).
		Where("student_id = ? AND from_date <= ? AND to_date >= ?", studentID, toDate, fromDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByStudent lists cuts for a student, newest first
func (r *messCutRepository) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.MessCut, int64, error) {
	var cuts []models.MessCut
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MessCut{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("from_date DESC").Limit(limit).Offset(offset).Find(&cuts).Error
	if err != nil {
		return nil, 0, err
	}
	return cuts, total, nil
}

// ListInRange lists cuts intersecting the given range, earliest first
func (r *messCutRepository) ListInRange(ctx context.Context, fromDate, toDate time.Time, limit, offset int) ([]models.MessCut, int64, error) {
	var cuts []models.MessCut
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MessCut{}).
		Where("from_date <= ? AND to_date >= ?", toDate, fromDate)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Student").Order("from_date ASC").Limit(limit).Offset(offset).Find(&cuts).Error
	if err != nil {
		return nil, 0, err
	}
	return cuts, total, nil
}

// CountCoveringDay counts how many students have a cut covering the given day
func (r *messCutRepository) CountCoveringDay(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessCut{}).
		Where("from_date <= ? AND to_date >= ?", day, day).
		Distinct("student_id").
		Count(&count).Error
	return count, err
}
