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

// Mess cut errors
var (
	ErrCutTooLate   = errors.New("mess cut must be applied before the daily cutoff time")
	ErrCutOverlap   = errors.New("an existing mess cut overlaps this range")
	ErrInvalidRange = errors.New("to date must not be before from date")
	ErrCutInPast    = errors.New("mess cut must not end in the past")
)

// MessCutService handles mess cut requests and the cutoff rule
type MessCutService struct {
	cutRepo     repositories.MessCutRepository
	studentRepo repositories.StudentRepository
	auditRepo   repositories.AuditLogRepository
	notify      *NotifyService
	schedule    *mealtime.Schedule
	now         func() time.Time
}

// NewMessCutService creates a new mess cut service
func NewMessCutService(
	cutRepo repositories.MessCutRepository,
	studentRepo repositories.StudentRepository,
	auditRepo repositories.AuditLogRepository,
	notify *NotifyService,
	schedule *mealtime.Schedule,
) *MessCutService {
	return &MessCutService{
		cutRepo:     cutRepo,
		studentRepo: studentRepo,
		auditRepo:   auditRepo,
		notify:      notify,
		schedule:    schedule,
		now:         time.Now,
	}
}

// ApplyInput represents a mess cut request
type ApplyInput struct {
	StudentID uint      `json:"student_id" validate:"required"`
	FromDate  time.Time `json:"-"`
	ToDate    time.Time `json:"-"`
}

// Apply creates a mess cut for a student.
//
// Student requests obey the cutoff rule: once the daily cutoff time has
// passed, same-day and next-day starts are gone and the earliest start
// moves to the day after tomorrow. Admin-applied cuts bypass the rule;
// cuts that would have violated it are stamped cutoff_ok=false for
// reporting. Nobody may create a cut that has already fully elapsed.
func (s *MessCutService) Apply(ctx context.Context, input *ApplyInput, appliedBy domain.CutAppliedBy, adminID uint) (*models.MessCut, error) {
	from := mealtime.DateOf(input.FromDate)
	to := mealtime.DateOf(input.ToDate)

	// 1. Validate the range
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	if to.Before(mealtime.DateOf(s.schedule.Today(s.now()))) {
		return nil, ErrCutInPast
	}

	// 2. The student must exist and be approved
	student, err := s.studentRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	if student.Status != string(domain.StudentApproved) {
		return nil, ErrStudentNotApproved
	}

	// 3. Enforce the cutoff rule
	cutoffOK := !from.Before(mealtime.DateOf(s.EarliestFromDate()))
	if appliedBy == domain.CutByStudent && !cutoffOK {
		return nil, ErrCutTooLate
	}

	// 4. Reject overlapping cuts
	overlap, err := s.cutRepo.HasOverlap(ctx, student.ID, from, to)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrCutOverlap
	}

	// 5. Persist
	cut := &models.MessCut{
		StudentID: student.ID,
		FromDate:  from,
		ToDate:    to,
		AppliedBy: string(appliedBy),
		CutoffOK:  cutoffOK,
	}
	if err := s.cutRepo.Create(ctx, cut); err != nil {
		return nil, err
	}

	// 6. Audit and notify
	actor := domain.ActorStudent
	actorID := strconv.FormatInt(student.TgUserID, 10)
	if appliedBy == domain.CutByAdmin {
		actor = domain.ActorAdmin
		actorID = strconv.FormatUint(uint64(adminID), 10)
	}
	s.audit(ctx, actor, actorID, "messcut.applied", cut)
	s.notify.Enqueue(ctx, strconv.FormatInt(student.TgUserID, 10), fmt.Sprintf(
		"✂️ Mess cut applied from %s to %s.",
		cut.FromDate.Format("2006-01-02"), cut.ToDate.Format("2006-01-02"),
	))

	log.Printf("✂️ Mess cut applied [student: %d, %s to %s, by: %s]",
		student.ID, cut.FromDate.Format("2006-01-02"), cut.ToDate.Format("2006-01-02"), appliedBy)
	return cut, nil
}

// EarliestFromDate returns the earliest start date a student request may use
// right now: today while the cutoff has not passed, the day after tomorrow
// once it has.
func (s *MessCutService) EarliestFromDate() time.Time {
	now := s.now()
	earliest := s.schedule.Today(now)
	if !s.schedule.WithinCutoff(now) {
		earliest = earliest.AddDate(0, 0, 2)
	}
	return earliest
}

// ListByStudent lists a student's mess cuts
func (s *MessCutService) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.MessCut, int64, error) {
	return s.cutRepo.ListByStudent(ctx, studentID, limit, offset)
}

func (s *MessCutService) audit(ctx context.Context, actor domain.ActorType, actorID, event string, cut *models.MessCut) {
	entry := &models.AuditLog{
		ActorType: string(actor),
		ActorID:   actorID,
		EventType: event,
		Payload: fmt.Sprintf(`{"cut_id":%d,"student_id":%d,"from":"%s","to":"%s","cutoff_ok":%t}`,
			cut.ID, cut.StudentID, cut.FromDate.Format("2006-01-02"), cut.ToDate.Format("2006-01-02"), cut.CutoffOK),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit entry %s: %v", event, err)
	}
}
