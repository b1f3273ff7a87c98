package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// Payment errors
var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentNotReviewable = errors.New("payment is not awaiting review")
	ErrInvalidCycle         = errors.New("cycle end must not be before cycle start")
	ErrPaymentOverlap       = errors.New("a payment already covers part of this cycle")
)

// PaymentService handles payment upload and verification
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	studentRepo repositories.StudentRepository
	auditRepo   repositories.AuditLogRepository
	notify      *NotifyService
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	studentRepo repositories.StudentRepository,
	auditRepo repositories.AuditLogRepository,
	notify *NotifyService,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		auditRepo:   auditRepo,
		notify:      notify,
	}
}

// UploadInput represents a payment screenshot upload
type UploadInput struct {
	StudentID     uint      `json:"student_id" validate:"required"`
	CycleStart    time.Time `json:"-"`
	CycleEnd      time.Time `json:"-"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	ScreenshotURL string    `json:"screenshot_url" validate:"required,url"`
}

// Upload records a payment claim awaiting admin review
func (s *PaymentService) Upload(ctx context.Context, input *UploadInput) (*models.Payment, error) {
	cycleStart := mealtime.DateOf(input.CycleStart)
	cycleEnd := mealtime.DateOf(input.CycleEnd)

	// 1. Validate the cycle
	if cycleEnd.Before(cycleStart) {
		return nil, ErrInvalidCycle
	}

	// 2. The student must exist
	student, err := s.studentRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	// 3. Reject cycles already claimed or paid
	overlap, err := s.paymentRepo.HasCycleOverlap(ctx, student.ID, cycleStart, cycleEnd)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrPaymentOverlap
	}

	// 4. Persist as UPLOADED
	payment := &models.Payment{
		StudentID:     student.ID,
		CycleStart:    cycleStart,
		CycleEnd:      cycleEnd,
		Amount:        input.Amount,
		ScreenshotURL: input.ScreenshotURL,
		Status:        string(domain.PaymentUploaded),
		Source:        string(domain.PaymentOnlineScreenshot),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.ActorStudent, strconv.FormatInt(student.TgUserID, 10), "payment.uploaded", payment.ID)
	s.notify.EnqueueAdmin(ctx, fmt.Sprintf(
		"💳 Payment uploaded for review\nStudent: %s (%s)\nAmount: %.2f\nCycle: %s to %s",
		student.Name, student.RollNo, payment.Amount,
		payment.CycleStart.Format("2006-01-02"), payment.CycleEnd.Format("2006-01-02"),
	))

	log.Printf("💳 Payment uploaded [id: %d, student: %d]", payment.ID, student.ID)
	return payment, nil
}

// RecordOfflineInput represents a cash payment recorded at the desk
type RecordOfflineInput struct {
	StudentID  uint      `json:"student_id" validate:"required"`
	CycleStart time.Time `json:"-"`
	CycleEnd   time.Time `json:"-"`
	Amount     float64   `json:"amount" validate:"required,gt=0"`
}

// RecordOffline records a cash payment taken by an admin. It is VERIFIED
// immediately since the admin handled the money.
func (s *PaymentService) RecordOffline(ctx context.Context, input *RecordOfflineInput, adminID uint) (*models.Payment, error) {
	cycleStart := mealtime.DateOf(input.CycleStart)
	cycleEnd := mealtime.DateOf(input.CycleEnd)
	if cycleEnd.Before(cycleStart) {
		return nil, ErrInvalidCycle
	}

	student, err := s.studentRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	overlap, err := s.paymentRepo.HasCycleOverlap(ctx, student.ID, cycleStart, cycleEnd)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrPaymentOverlap
	}

	now := time.Now()
	payment := &models.Payment{
		StudentID:       student.ID,
		CycleStart:      cycleStart,
		CycleEnd:        cycleEnd,
		Amount:          input.Amount,
		Status:          string(domain.PaymentVerified),
		Source:          string(domain.PaymentOfflineManual),
		ReviewerAdminID: &adminID,
		ReviewedAt:      &now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.ActorAdmin, strconv.FormatUint(uint64(adminID), 10), "payment.recorded_offline", payment.ID)
	s.notify.Enqueue(ctx, strconv.FormatInt(student.TgUserID, 10), fmt.Sprintf(
		"✅ Your cash payment of %.2f was recorded. Mess access is active until %s.",
		payment.Amount, payment.CycleEnd.Format("2006-01-02"),
	))

	log.Printf("💵 Offline payment recorded [id: %d, student: %d, by admin: %d]", payment.ID, student.ID, adminID)
	return payment, nil
}

// Verify approves an uploaded payment
func (s *PaymentService) Verify(ctx context.Context, paymentID, adminID uint) (*models.Payment, error) {
	return s.review(ctx, paymentID, adminID, string(domain.PaymentVerified))
}

// Deny rejects an uploaded payment
func (s *PaymentService) Deny(ctx context.Context, paymentID, adminID uint) (*models.Payment, error) {
	return s.review(ctx, paymentID, adminID, string(domain.PaymentDenied))
}

// review applies an admin decision to an UPLOADED payment
func (s *PaymentService) review(ctx context.Context, paymentID, adminID uint, status string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	// Only payments awaiting review can be decided
	if payment.Status != string(domain.PaymentUploaded) {
		return nil, ErrPaymentNotReviewable
	}

	now := time.Now()
	payment.Status = status
	payment.ReviewerAdminID = &adminID
	payment.ReviewedAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	event := "payment.verified"
	message := fmt.Sprintf("✅ Your payment of %.2f was verified. Mess access is active until %s.",
		payment.Amount, payment.CycleEnd.Format("2006-01-02"))
	if status == string(domain.PaymentDenied) {
		event = "payment.denied"
		message = fmt.Sprintf("❌ Your payment of %.2f was denied. Contact the mess office.", payment.Amount)
	}

	s.audit(ctx, domain.ActorAdmin, strconv.FormatUint(uint64(adminID), 10), event, payment.ID)
	if payment.Student != nil {
		s.notify.Enqueue(ctx, strconv.FormatInt(payment.Student.TgUserID, 10), message)
	}

	log.Printf("💳 Payment %s [id: %d, by admin: %d]", status, payment.ID, adminID)
	return payment, nil
}

// ListByStudent lists a student's payments
func (s *PaymentService) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListByStudent(ctx, studentID, limit, offset)
}

// ListPending lists payments awaiting review, oldest first
func (s *PaymentService) ListPending(ctx context.Context, limit, offset int) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListByStatus(ctx, string(domain.PaymentUploaded), limit, offset)
}

func (s *PaymentService) audit(ctx context.Context, actor domain.ActorType, actorID, event string, paymentID uint) {
	entry := &models.AuditLog{
		ActorType: string(actor),
		ActorID:   actorID,
		EventType: event,
		Payload:   fmt.Sprintf(`{"payment_id":%d}`, paymentID),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit entry %s: %v", event, err)
	}
}
