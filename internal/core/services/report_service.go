package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// ReportService aggregates scan and operations data for admins
type ReportService struct {
	scanRepo    repositories.ScanEventRepository
	cutRepo     repositories.MessCutRepository
	paymentRepo repositories.PaymentRepository
	studentRepo repositories.StudentRepository
	schedule    *mealtime.Schedule
}

// NewReportService creates a new report service
func NewReportService(
	scanRepo repositories.ScanEventRepository,
	cutRepo repositories.MessCutRepository,
	paymentRepo repositories.PaymentRepository,
	studentRepo repositories.StudentRepository,
	schedule *mealtime.Schedule,
) *ReportService {
	return &ReportService{
		scanRepo:    scanRepo,
		cutRepo:     cutRepo,
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		schedule:    schedule,
	}
}

// DailyReport summarizes one facility day
type DailyReport struct {
	Date                 string           `json:"date"`
	ScansByResult        map[string]int64 `json:"scans_by_result"`
	TotalScans           int64            `json:"total_scans"`
	StudentsOnCut        int64            `json:"students_on_cut"`
	PendingPayments      int64            `json:"pending_payments"`
	PendingRegistrations int64            `json:"pending_registrations"`
}

// Daily builds the report for the facility day containing the given instant
func (s *ReportService) Daily(ctx context.Context, at time.Time) (*DailyReport, error) {
	dayStart := s.schedule.Today(at)
	dayEnd := dayStart.AddDate(0, 0, 1)

	counts, err := s.scanRepo.CountByResult(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}

	onCut, err := s.cutRepo.CountCoveringDay(ctx, mealtime.DateOf(dayStart))
	if err != nil {
		return nil, err
	}

	_, pendingPayments, err := s.paymentRepo.ListByStatus(ctx, string(domain.PaymentUploaded), 1, 0)
	if err != nil {
		return nil, err
	}

	_, pendingRegs, err := s.studentRepo.List(ctx, string(domain.StudentPending), 1, 0)
	if err != nil {
		return nil, err
	}

	return &DailyReport{
		Date:                 dayStart.Format("2006-01-02"),
		ScansByResult:        counts,
		TotalScans:           total,
		StudentsOnCut:        onCut,
		PendingPayments:      pendingPayments,
		PendingRegistrations: pendingRegs,
	}, nil
}

// FormatDaily renders the report as a Telegram message
func (s *ReportService) FormatDaily(report *DailyReport) string {
	return fmt.Sprintf(
		"📊 Mess report for %s\n"+
			"Meals served: %d\n"+
			"Blocked (no payment): %d\n"+
			"Blocked (cut): %d\n"+
			"Blocked (status): %d\n"+
			"Blocked (closure): %d\n"+
			"Students on mess cut: %d\n"+
			"Payments awaiting review: %d\n"+
			"Registrations awaiting approval: %d",
		report.Date,
		report.ScansByResult[string(domain.ScanAllowed)],
		report.ScansByResult[string(domain.ScanBlockedPayment)],
		report.ScansByResult[string(domain.ScanBlockedCut)],
		report.ScansByResult[string(domain.ScanBlockedStatus)],
		report.ScansByResult[string(domain.ScanBlockedClosure)],
		report.StudentsOnCut,
		report.PendingPayments,
		report.PendingRegistrations,
	)
}

// PaymentSummary counts payments by status plus approved students with no
// verified cycle covering today
type PaymentSummary struct {
	Verified    int64 `json:"verified"`
	Uploaded    int64 `json:"uploaded"`
	Denied      int64 `json:"denied"`
	NotUploaded int64 `json:"not_uploaded"`
}

// Payments builds the payment status summary for the facility day at the
// given instant
func (s *ReportService) Payments(ctx context.Context, at time.Time) (*PaymentSummary, error) {
	counts, err := s.paymentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PaymentSummary{
		Verified: counts[string(domain.PaymentVerified)],
		Uploaded: counts[string(domain.PaymentUploaded)],
		Denied:   counts[string(domain.PaymentDenied)],
	}

	// Approved students who have paid nothing for the current day
	ids, err := s.studentRepo.ListApprovedIDs(ctx)
	if err != nil {
		return nil, err
	}
	today := mealtime.DateOf(s.schedule.Today(at))
	for _, id := range ids {
		paid, err := s.paymentRepo.HasVerifiedPayment(ctx, id, today)
		if err != nil {
			return nil, err
		}
		if !paid {
			summary.NotUploaded++
		}
	}

	return summary, nil
}

// ListCuts lists mess cuts intersecting the given range
func (s *ReportService) ListCuts(ctx context.Context, from, to time.Time, limit, offset int) ([]models.MessCut, int64, error) {
	return s.cutRepo.ListInRange(ctx, mealtime.DateOf(from), mealtime.DateOf(to), limit, offset)
}

// ListScans lists scan events in a window with optional result filter
func (s *ReportService) ListScans(ctx context.Context, from, to time.Time, result string, limit, offset int) ([]models.ScanEvent, int64, error) {
	return s.scanRepo.List(ctx, from, to, result, limit, offset)
}

// ListStudentScans lists one student's scan history
func (s *ReportService) ListStudentScans(ctx context.Context, studentID uint, limit, offset int) ([]models.ScanEvent, int64, error) {
	return s.scanRepo.ListByStudent(ctx, studentID, limit, offset)
}
