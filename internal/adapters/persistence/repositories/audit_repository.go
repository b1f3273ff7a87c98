package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// auditLogRepository implements AuditLogRepository interface
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends an audit log entry
func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List lists audit entries with optional event type filter, newest first
func (r *auditLogRepository) List(ctx context.Context, eventType string, limit, offset int) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
