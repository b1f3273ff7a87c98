package repositories

import (
	"context"
	"time"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
)

// StudentRepository handles student data operations
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByTgUserID(ctx context.Context, tgUserID int64) (*models.Student, error)
	GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	// UpdateQR bumps the student's QR credentials only if the stored version
	// still matches expectedVersion. Returns the number of rows updated (0
	// means a concurrent rotation won).
	UpdateQR(ctx context.Context, id uint, expectedVersion, newVersion int, newNonce string) (int64, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Student, int64, error)
	ListApprovedIDs(ctx context.Context) ([]uint, error)
	ListApproved(ctx context.Context) ([]models.Student, error)
}

// PaymentRepository handles payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	// HasVerifiedPayment reports whether the student has a VERIFIED payment
	// whose cycle covers day (inclusive on both ends).
	HasVerifiedPayment(ctx context.Context, studentID uint, day time.Time) (bool, error)
	// HasCycleOverlap reports whether an UPLOADED or VERIFIED payment already
	// intersects [cycleStart, cycleEnd].
	HasCycleOverlap(ctx context.Context, studentID uint, cycleStart, cycleEnd time.Time) (bool, error)
	ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.Payment, int64, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Payment, int64, error)
	// CountByStatus returns payment counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// ListExpiring returns VERIFIED payments whose cycle ends exactly on day
	// and whose student has no later verified cycle.
	ListExpiring(ctx context.Context, day time.Time) ([]models.Payment, error)
}

// MessCutRepository handles mess cut data operations
type MessCutRepository interface {
	Create(ctx context.Context, cut *models.MessCut) error
	// HasActiveCut reports whether the student has a cut covering day.
	HasActiveCut(ctx context.Context, studentID uint, day time.Time) (bool, error)
	// HasOverlap reports whether the student already has a cut intersecting
	// [fromDate, toDate].
	HasOverlap(ctx context.Context, studentID uint, fromDate, toDate time.Time) (bool, error)
	ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.MessCut, int64, error)
	// ListInRange lists cuts intersecting [fromDate, toDate].
	ListInRange(ctx context.Context, fromDate, toDate time.Time, limit, offset int) ([]models.MessCut, int64, error)
	CountCoveringDay(ctx context.Context, day time.Time) (int64, error)
}

// MessClosureRepository handles mess closure data operations
type MessClosureRepository interface {
	Create(ctx context.Context, closure *models.MessClosure) error
	// HasActiveClosure reports whether any closure covers day.
	HasActiveClosure(ctx context.Context, day time.Time) (bool, error)
	HasOverlap(ctx context.Context, fromDate, toDate time.Time) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.MessClosure, int64, error)
}

// ScanEventRepository handles the append-only scan audit trail
type ScanEventRepository interface {
	Create(ctx context.Context, event *models.ScanEvent) error
	ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]models.ScanEvent, int64, error)
	List(ctx context.Context, from, to time.Time, result string, limit, offset int) ([]models.ScanEvent, int64, error)
	// CountByResult aggregates events in [from, to) grouped by result.
	CountByResult(ctx context.Context, from, to time.Time) (map[string]int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// StaffTokenRepository handles scanner token data operations
type StaffTokenRepository interface {
	Create(ctx context.Context, token *models.StaffToken) error
	GetByHash(ctx context.Context, hash string) (*models.StaffToken, error)
	GetByID(ctx context.Context, id uint) (*models.StaffToken, error)
	Revoke(ctx context.Context, id uint) error
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context) ([]models.StaffToken, error)
}

// AuditLogRepository handles audit log writes and queries
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, eventType string, limit, offset int) ([]models.AuditLog, int64, error)
}

// NotificationRepository handles the notification outbox
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// ClaimPending returns up to limit PENDING rows ordered oldest first.
	ClaimPending(ctx context.Context, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, errMsg string, dead bool) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// SettingsRepository handles the single settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	BumpQRSecretVersion(ctx context.Context) (int, error)
}

// AdminUserRepository handles admin account data operations
type AdminUserRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByID(ctx context.Context, id uint) (*models.AdminUser, error)
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

// RefreshTokenRepository handles refresh token data operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllForAdmin(ctx context.Context, adminID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}
