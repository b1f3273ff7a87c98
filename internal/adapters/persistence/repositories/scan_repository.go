package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// scanEventRepository implements ScanEventRepository interface
type scanEventRepository struct {
	db *gorm.DB
}

// NewScanEventRepository creates a new scan event repository
func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &scanEventRepository{db: db}
}

// Create appends a scan event
func (r *scanEventRepository) Create(ctx context.Context, event *models.ScanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByStudent lists scan events for a student, newest first
func (r *scanEventRepository) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.ScanEvent, int64, error) {
	var events []models.ScanEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ScanEvent{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("scanned_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// List lists scan events in a time window with optional result filter
func (r *scanEventRepository) List(ctx context.Context, from, to time.Time, result string, limit, offset int) ([]models.ScanEvent, int64, error) {
	var events []models.ScanEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ScanEvent{}).
		Where("scanned_at >= ? AND scanned_at < ?", from, to)
	if result != "" {
		query = query.Where("result = ?", result)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Student").Order("scanned_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// CountByResult aggregates events in [from, to) grouped by result
func (r *scanEventRepository) CountByResult(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	type row struct {
		Result string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.ScanEvent{}).
		Select("result, COUNT(*) as count").
		Where("scanned_at >= ? AND scanned_at < ?", from, to).
		Group("result").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Result] = rw.Count
	}
	return counts, nil
}

// DeleteOlderThan hard-deletes events older than the cutoff and returns the
// number of rows removed
func (r *scanEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("scanned_at < ?", cutoff).
		Delete(&models.ScanEvent{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
