package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// notificationRepository implements NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create enqueues a notification
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ClaimPending returns up to limit PENDING rows, oldest first
func (r *notificationRepository) ClaimPending(ctx context.Context, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", models.NotifyPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkSent marks a notification delivered
func (r *notificationRepository) MarkSent(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.NotifySent,
			"sent_at": at,
		}).Error
}

// MarkFailed records a delivery failure, parking the row as DEAD once the
// retry budget is spent
func (r *notificationRepository) MarkFailed(ctx context.Context, id uint, errMsg string, dead bool) error {
	now := time.Now()
	updates := map[string]interface{}{
		"retry_count":   gorm.Expr("retry_count + 1"),
		"last_error":    errMsg,
		"last_retry_at": now,
	}
	if dead {
		updates["status"] = models.NotifyDead
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountByStatus counts notifications in the given status
func (r *notificationRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
