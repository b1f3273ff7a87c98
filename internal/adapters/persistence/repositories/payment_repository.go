package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment by ID
func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Preload("Student").Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update updates a payment
func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// HasVerifiedPayment checks for a VERIFIED payment covering the given day
func (r *paymentRepository) HasVerifiedPayment(ctx context.Context, studentID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("student_id = ? AND status = ? AND cycle_start <= ? AND cycle_end >= ?",
			studentID, "VERIFIED", day, day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasCycleOverlap checks whether an UPLOADED or VERIFIED payment already
// covers any part of the given cycle
func (r *paymentRepository) HasCycleOverlap(ctx context.Context, studentID uint, cycleStart, cycleEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("student_id = ? AND status IN ? AND cycle_start <= ? AND cycle_end >= ?",
			studentID, []string{"UPLOADED", "VERIFIED"}, cycleEnd, cycleStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByStudent lists payments for a student, newest first
func (r *paymentRepository) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListByStatus lists payments by status, oldest first so reviewers work FIFO
func (r *paymentRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Student").Order("created_at ASC").Limit(limit).Offset(offset).Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// CountByStatus returns payment counts grouped by status
func (r *paymentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListExpiring returns verified payments ending on the given day whose student
// has no verified cycle extending past it
func (r *paymentRepository) ListExpiring(ctx context.Context, day time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Preload("Student").
		Where("status = ? AND cycle_end = ?", "VERIFIED", day).
		Where("student_id NOT IN (?)",
			r.db.Model(&models.Payment{}).Select("student_id").
				Where("status = ? AND cycle_end > ?", "VERIFIED", day)).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
