package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// studentRepository implements StudentRepository interface
type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

// Create creates a new student
func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetByID gets a student by ID
func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByTgUserID gets a student by Telegram user ID
func (r *studentRepository) GetByTgUserID(ctx context.Context, tgUserID int64) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("tg_user_id = ?", tgUserID).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByRollNo gets a student by roll number
func (r *studentRepository) GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("roll_no = ?", rollNo).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Update updates a student
func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// UpdateStatus updates only the registration status
func (r *studentRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateQR performs an optimistic QR credential rotation. The WHERE clause on
// the current version makes concurrent rotations lose with RowsAffected == 0
// instead of silently overwriting each other.
func (r *studentRepository) UpdateQR(ctx context.Context, id uint, expectedVersion, newVersion int, newNonce string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ? AND qr_version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"qr_version": newVersion,
			"qr_nonce":   newNonce,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// List lists students with optional status filter and pagination
func (r *studentRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Student{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// ListApprovedIDs returns the IDs of all APPROVED students
func (r *studentRepository) ListApprovedIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("status = ?", "APPROVED").
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListApproved returns all APPROVED students
func (r *studentRepository) ListApproved(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("status = ?", "APPROVED").
		Order("id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
