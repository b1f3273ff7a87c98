package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/core/qrtoken"
)

// Student errors
var (
	ErrStudentExists      = errors.New("student already registered")
	ErrStudentNotApproved = errors.New("student registration not approved")
	ErrInvalidStatus      = errors.New("invalid status transition")
)

// qrRotateRetries bounds how often a single rotation retries after losing a
// concurrent update race
const qrRotateRetries = 3

// StudentService handles student registration, approval and QR credentials
type StudentService struct {
	studentRepo  repositories.StudentRepository
	settingsRepo repositories.SettingsRepository
	auditRepo    repositories.AuditLogRepository
	notify       *NotifyService
	qrSecret     string
}

// NewStudentService creates a new student service
func NewStudentService(
	studentRepo repositories.StudentRepository,
	settingsRepo repositories.SettingsRepository,
	auditRepo repositories.AuditLogRepository,
	notify *NotifyService,
	qrSecret string,
) *StudentService {
	return &StudentService{
		studentRepo:  studentRepo,
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		notify:       notify,
		qrSecret:     qrSecret,
	}
}

// RegisterInput represents a registration request
type RegisterInput struct {
	TgUserID int64  `json:"tg_user_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	RollNo   string `json:"roll_no" validate:"required,min=2,max=20"`
	RoomNo   string `json:"room_no" validate:"max=20"`
	Phone    string `json:"phone" validate:"required,phone"`
}

// Register creates a new PENDING student and alerts the admins
func (s *StudentService) Register(ctx context.Context, input *RegisterInput) (*models.Student, error) {
	// Roll numbers are stored uppercase
	input.RollNo = strings.ToUpper(input.RollNo)

	// 1. Reject duplicates by Telegram ID or roll number
	if _, err := s.studentRepo.GetByTgUserID(ctx, input.TgUserID); err == nil {
		return nil, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.studentRepo.GetByRollNo(ctx, input.RollNo); err == nil {
		return nil, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. Mint the student's initial QR credentials
	nonce, err := qrtoken.NewNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR nonce: %w", err)
	}

	student := &models.Student{
		TgUserID:  input.TgUserID,
		Name:      input.Name,
		RollNo:    input.RollNo,
		RoomNo:    input.RoomNo,
		Phone:     input.Phone,
		Status:    string(domain.StudentPending),
		QRVersion: 1,
		QRNonce:   nonce,
	}

	// 3. Persist
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	// 4. Audit and notify admins
	s.audit(ctx, domain.ActorStudent, strconv.FormatInt(input.TgUserID, 10), "student.registered", map[string]interface{}{
		"student_id": student.ID,
		"roll_no":    student.RollNo,
	})
	s.notify.EnqueueAdmin(ctx, fmt.Sprintf(
		"🆕 New registration pending approval\nName: %s\nRoll No: %s\nRoom: %s",
		student.Name, student.RollNo, student.RoomNo,
	))

	log.Printf("📝 Student registered [id: %d, roll: %s]", student.ID, student.RollNo)
	return student, nil
}

// Approve moves a PENDING student to APPROVED and sends them their QR
func (s *StudentService) Approve(ctx context.Context, studentID, adminID uint) (*models.Student, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if student.Status == string(domain.StudentApproved) {
		return nil, ErrInvalidStatus
	}

	if err := s.studentRepo.UpdateStatus(ctx, studentID, string(domain.StudentApproved)); err != nil {
		return nil, err
	}
	student.Status = string(domain.StudentApproved)

	s.audit(ctx, domain.ActorAdmin, strconv.FormatUint(uint64(adminID), 10), "student.approved", map[string]interface{}{
		"student_id": student.ID,
	})
	s.notify.Enqueue(ctx, strconv.FormatInt(student.TgUserID, 10), fmt.Sprintf(
		"✅ Your mess registration has been approved, %s!\nYour QR code:\n<code>%s</code>",
		student.Name, s.tokenFor(student),
	))

	log.Printf("✅ Student approved [id: %d, by admin: %d]", studentID, adminID)
	return student, nil
}

// Deny moves a PENDING student to DENIED
func (s *StudentService) Deny(ctx context.Context, studentID, adminID uint) (*models.Student, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if student.Status == string(domain.StudentDenied) {
		return nil, ErrInvalidStatus
	}

	if err := s.studentRepo.UpdateStatus(ctx, studentID, string(domain.StudentDenied)); err != nil {
		return nil, err
	}
	student.Status = string(domain.StudentDenied)

	s.audit(ctx, domain.ActorAdmin, strconv.FormatUint(uint64(adminID), 10), "student.denied", map[string]interface{}{
		"student_id": student.ID,
	})
	s.notify.Enqueue(ctx, strconv.FormatInt(student.TgUserID, 10),
		"❌ Your mess registration was denied. Contact the mess office for details.")

	log.Printf("🚫 Student denied [id: %d, by admin: %d]", studentID, adminID)
	return student, nil
}

// GetByID returns a student by ID
func (s *StudentService) GetByID(ctx context.Context, studentID uint) (*models.Student, error) {
	return s.getStudent(ctx, studentID)
}

// GetByTgUserID returns a student by Telegram user ID
func (s *StudentService) GetByTgUserID(ctx context.Context, tgUserID int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByTgUserID(ctx, tgUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// List lists students with optional status filter
func (s *StudentService) List(ctx context.Context, status string, limit, offset int) ([]models.Student, int64, error) {
	return s.studentRepo.List(ctx, status, limit, offset)
}

// GetQRPayload returns the student's current signed QR payload. Only approved
// students have a usable QR.
func (s *StudentService) GetQRPayload(ctx context.Context, studentID uint) (string, error) {
	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return "", err
	}
	if student.Status != string(domain.StudentApproved) {
		return "", ErrStudentNotApproved
	}
	return s.tokenFor(student), nil
}

// RotateQR reissues a student's QR credentials. The version bump is guarded
// by an optimistic check on the stored version; losing the race is retried a
// few times before giving up with ErrQRConflict.
func (s *StudentService) RotateQR(ctx context.Context, studentID uint) (string, error) {
	for attempt := 0; attempt < qrRotateRetries; attempt++ {
		student, err := s.getStudent(ctx, studentID)
		if err != nil {
			return "", err
		}

		nonce, err := qrtoken.NewNonce()
		if err != nil {
			return "", fmt.Errorf("failed to generate QR nonce: %w", err)
		}

		rows, err := s.studentRepo.UpdateQR(ctx, studentID, student.QRVersion, student.QRVersion+1, nonce)
		if err != nil {
			return "", err
		}
		if rows == 0 {
			// Lost to a concurrent rotation, reload and retry
			continue
		}

		student.QRVersion++
		student.QRNonce = nonce

		s.audit(ctx, domain.ActorSystem, "", "student.qr_rotated", map[string]interface{}{
			"student_id": student.ID,
			"qr_version": student.QRVersion,
		})
		s.notify.Enqueue(ctx, strconv.FormatInt(student.TgUserID, 10), fmt.Sprintf(
			"🔄 Your mess QR code was reissued. Old codes no longer work.\nNew QR code:\n<code>%s</code>",
			s.tokenFor(student),
		))

		log.Printf("🔄 QR rotated [student: %d, version: %d]", student.ID, student.QRVersion)
		return s.tokenFor(student), nil
	}

	return "", domain.ErrQRConflict
}

// BulkRotateResult summarizes a bulk rotation run
type BulkRotateResult struct {
	Succeeded     []uint `json:"succeeded"`
	Failed        []uint `json:"failed"`
	SecretVersion int    `json:"qr_secret_version"`
}

// BulkRotateQR reissues QR credentials for every approved student. Failures
// are isolated per student: one broken row never aborts the run.
func (s *StudentService) BulkRotateQR(ctx context.Context) (*BulkRotateResult, error) {
	ids, err := s.studentRepo.ListApprovedIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &BulkRotateResult{}
	for _, id := range ids {
		if _, err := s.RotateQR(ctx, id); err != nil {
			log.Printf("⚠️ Bulk rotation failed for student %d: %v", id, err)
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	// The rotations above are already committed, so a failed version bump
	// must not discard them. The counter is bookkeeping, not the boundary.
	version, err := s.settingsRepo.BumpQRSecretVersion(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to bump QR secret version after bulk rotation: %v", err)
	} else {
		result.SecretVersion = version
	}

	s.audit(ctx, domain.ActorSystem, "", "student.qr_bulk_rotated", map[string]interface{}{
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	})
	s.notify.EnqueueAdmin(ctx, fmt.Sprintf(
		"🔄 Bulk QR rotation finished\nSucceeded: %d\nFailed: %d",
		len(result.Succeeded), len(result.Failed),
	))

	log.Printf("🔄 Bulk QR rotation done [ok: %d, failed: %d]", len(result.Succeeded), len(result.Failed))
	return result, nil
}

// tokenFor signs the student's current QR credentials
func (s *StudentService) tokenFor(student *models.Student) string {
	return qrtoken.Generate(student.ID, student.QRVersion, student.QRNonce, s.qrSecret)
}

func (s *StudentService) getStudent(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// audit appends an audit entry, logging failures without propagating them
func (s *StudentService) audit(ctx context.Context, actor domain.ActorType, actorID, event string, payload map[string]interface{}) {
	raw, _ := json.Marshal(payload)
	entry := &models.AuditLog{
		ActorType: string(actor),
		ActorID:   actorID,
		EventType: event,
		Payload:   string(raw),
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit entry %s: %v", event, err)
	}
}
