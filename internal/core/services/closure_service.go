package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// Closure errors
var (
	ErrClosureOverlap = errors.New("an existing closure overlaps this range")
)

// ClosureService handles facility-wide mess closures
type ClosureService struct {
	closureRepo repositories.MessClosureRepository
	studentRepo repositories.StudentRepository
	auditRepo   repositories.AuditLogRepository
	notify      *NotifyService
}

// NewClosureService creates a new closure service
func NewClosureService(
	closureRepo repositories.MessClosureRepository,
	studentRepo repositories.StudentRepository,
	auditRepo repositories.AuditLogRepository,
	notify *NotifyService,
) *ClosureService {
	return &ClosureService{
		closureRepo: closureRepo,
		studentRepo: studentRepo,
		auditRepo:   auditRepo,
		notify:      notify,
	}
}

// ClosureInput represents a closure declaration
type ClosureInput struct {
	FromDate time.Time `json:"-"`
	ToDate   time.Time `json:"-"`
	Reason   string    `json:"reason" validate:"required,max=500"`
}

// Create declares a mess closure and broadcasts it to every approved student
func (s *ClosureService) Create(ctx context.Context, input *ClosureInput, adminID uint) (*models.MessClosure, error) {
	from := mealtime.DateOf(input.FromDate)
	to := mealtime.DateOf(input.ToDate)

	// 1. Validate the range
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	// 2. Reject overlapping closures
	overlap, err := s.closureRepo.HasOverlap(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrClosureOverlap
	}

	// 3. Persist
	closure := &models.MessClosure{
		FromDate:         from,
		ToDate:           to,
		Reason:           input.Reason,
		CreatedByAdminID: adminID,
	}
	if err := s.closureRepo.Create(ctx, closure); err != nil {
		return nil, err
	}

	// 4. Audit and broadcast
	entry := &models.AuditLog{
		ActorType: string(domain.ActorAdmin),
		ActorID:   strconv.FormatUint(uint64(adminID), 10),
		EventType: "closure.created",
		Payload: fmt.Sprintf(`{"closure_id":%d,"from":"%s","to":"%s"}`,
			closure.ID, closure.FromDate.Format("2006-01-02"), closure.ToDate.Format("2006-01-02")),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit entry closure.created: %v", err)
	}

	s.broadcast(ctx, closure)

	log.Printf("🚪 Mess closure created [%s to %s, by admin: %d]",
		closure.FromDate.Format("2006-01-02"), closure.ToDate.Format("2006-01-02"), adminID)
	return closure, nil
}

// List lists closures, newest first
func (s *ClosureService) List(ctx context.Context, limit, offset int) ([]models.MessClosure, int64, error) {
	return s.closureRepo.List(ctx, limit, offset)
}

// broadcast enqueues the closure announcement for every approved student
func (s *ClosureService) broadcast(ctx context.Context, closure *models.MessClosure) {
	students, err := s.studentRepo.ListApproved(ctx)
	if err != nil {
		log.Printf("❌ Failed to load students for closure broadcast: %v", err)
		return
	}

	message := fmt.Sprintf("🚪 The mess will be closed from %s to %s.\nReason: %s",
		closure.FromDate.Format("2006-01-02"), closure.ToDate.Format("2006-01-02"), closure.Reason)
	for i := range students {
		s.notify.Enqueue(ctx, strconv.FormatInt(students[i].TgUserID, 10), message)
	}

	log.Printf("📣 Closure broadcast queued for %d students", len(students))
}
