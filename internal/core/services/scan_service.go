package services

import (
	"context"
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
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// Result messages shown on the scanner screen
const (
	MsgAllowed        = "Access granted. Enjoy your meal!"
	MsgBlockedStatus  = "Student registration not approved"
	MsgBlockedPayment = "Payment not verified for current cycle"
	MsgBlockedCut     = "Mess cut applied for today"
	MsgBlockedClosure = "Mess is closed today"
)

// ScanService decides whether a scanned QR grants a meal. Every completed
// decision is recorded as a scan event; the event write is part of the
// decision, not a side effect that may be dropped.
type ScanService struct {
	studentRepo repositories.StudentRepository
	paymentRepo repositories.PaymentRepository
	cutRepo     repositories.MessCutRepository
	closureRepo repositories.MessClosureRepository
	scanRepo    repositories.ScanEventRepository
	staffRepo   repositories.StaffTokenRepository
	notify      *NotifyService
	schedule    *mealtime.Schedule
	qrSecret    string
	now         func() time.Time
}

// NewScanService creates a new scan service
func NewScanService(
	studentRepo repositories.StudentRepository,
	paymentRepo repositories.PaymentRepository,
	cutRepo repositories.MessCutRepository,
	closureRepo repositories.MessClosureRepository,
	scanRepo repositories.ScanEventRepository,
	staffRepo repositories.StaffTokenRepository,
	notify *NotifyService,
	schedule *mealtime.Schedule,
	qrSecret string,
) *ScanService {
	return &ScanService{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		cutRepo:     cutRepo,
		closureRepo: closureRepo,
		scanRepo:    scanRepo,
		staffRepo:   staffRepo,
		notify:      notify,
		schedule:    schedule,
		qrSecret:    qrSecret,
		now:         time.Now,
	}
}

// ScanInput represents a scanner request. Meal overrides the wall-clock
// auto-detection when set; it must name a configured meal.
type ScanInput struct {
	QRData       string `json:"qr_data" validate:"required"`
	Meal         string `json:"meal"`
	DeviceInfo   string `json:"device_info"`
	StaffTokenID *uint  `json:"-"`
}

// ScanOutput represents the decision shown to the scanner operator
type ScanOutput struct {
	Result    string                  `json:"result"`
	Message   string                  `json:"message"`
	Meal      string                  `json:"meal"`
	ScannedAt time.Time               `json:"scanned_at"`
	Student   *models.StudentSnapshot `json:"student"`
}

// ProcessScan runs the access decision cascade for one scanned QR payload.
//
// The first blocking condition wins; later checks are not evaluated. A scan
// that fails before the student is identified (bad signature, stale token,
// unknown student, no meal window) returns an error and leaves no trace in
// the audit trail.
func (s *ScanService) ProcessScan(ctx context.Context, input *ScanInput) (*ScanOutput, error) {
	now := s.now()

	// 1. Verify the token signature
	token, ok := qrtoken.Decode(input.QRData, s.qrSecret)
	if !ok {
		return nil, domain.ErrInvalidQR
	}

	// 2. Identify the student
	student, err := s.studentRepo.GetByID(ctx, token.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	// 3. Reject rotated-out credentials. A stale token is indistinguishable
	// from a forged one on the wire, so the error is the same.
	if token.Version != student.QRVersion || token.Nonce != student.QRNonce {
		return nil, domain.ErrInvalidQR
	}

	// 4. Resolve the meal: an explicit override if given, otherwise the
	// active window in facility time
	meal := strings.ToUpper(input.Meal)
	if meal == "" {
		var active bool
		meal, active = s.schedule.CurrentMeal(now)
		if !active {
			return nil, domain.ErrNoActiveMeal
		}
	} else if !s.schedule.Has(meal) {
		return nil, domain.ErrNoActiveMeal
	}
	today := mealtime.DateOf(s.schedule.Today(now))

	// 5. Decision cascade, first block wins
	result, message, err := s.decide(ctx, student, today)
	if err != nil {
		return nil, err
	}

	// 6. Record the decision. If the audit write fails the whole scan fails:
	// access is never granted without a trail.
	event := &models.ScanEvent{
		StudentID:    student.ID,
		Meal:         meal,
		ScannedAt:    now,
		StaffTokenID: input.StaffTokenID,
		Result:       result,
		DeviceInfo:   input.DeviceInfo,
	}
	if err := s.scanRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record scan event: %w", err)
	}

	if input.StaffTokenID != nil {
		if err := s.staffRepo.TouchLastUsed(ctx, *input.StaffTokenID, now); err != nil {
			log.Printf("⚠️ Failed to update staff token last use: %v", err)
		}
	}

	if result == string(domain.ScanAllowed) {
		s.notify.Enqueue(ctx, strconv.FormatInt(student.TgUserID, 10),
			fmt.Sprintf("🍽 %s served at %s.", meal, now.Format("15:04")))
	}

	return &ScanOutput{
		Result:    result,
		Message:   message,
		Meal:      meal,
		ScannedAt: now,
		Student:   s.snapshot(student, result),
	}, nil
}

// decide evaluates the blocking conditions in their fixed order
func (s *ScanService) decide(ctx context.Context, student *models.Student, today time.Time) (string, string, error) {
	if student.Status != string(domain.StudentApproved) {
		return string(domain.ScanBlockedStatus), MsgBlockedStatus, nil
	}

	paid, err := s.paymentRepo.HasVerifiedPayment(ctx, student.ID, today)
	if err != nil {
		return "", "", err
	}
	if !paid {
		return string(domain.ScanBlockedPayment), MsgBlockedPayment, nil
	}

	cut, err := s.cutRepo.HasActiveCut(ctx, student.ID, today)
	if err != nil {
		return "", "", err
	}
	if cut {
		return string(domain.ScanBlockedCut), MsgBlockedCut, nil
	}

	closed, err := s.closureRepo.HasActiveClosure(ctx, today)
	if err != nil {
		return "", "", err
	}
	if closed {
		return string(domain.ScanBlockedClosure), MsgBlockedClosure, nil
	}

	return string(domain.ScanAllowed), MsgAllowed, nil
}

// snapshot builds the operator-facing student summary. The flags mirror what
// the cascade already determined for this scan.
func (s *ScanService) snapshot(student *models.Student, result string) *models.StudentSnapshot {
	snap := &models.StudentSnapshot{
		ID:     student.ID,
		Name:   student.Name,
		RollNo: student.RollNo,
		RoomNo: student.RoomNo,
		Status: student.Status,
	}

	switch result {
	case string(domain.ScanAllowed):
		snap.PaymentOK = true
	case string(domain.ScanBlockedCut):
		snap.PaymentOK = true
		snap.HasCutToday = true
	case string(domain.ScanBlockedClosure):
		snap.PaymentOK = true
		snap.HasClosureToday = true
	}

	return snap
}
