package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

const (
	// scanRetentionDays is how long scan events are kept before cleanup
	scanRetentionDays = 30
	// expiryWarningDays is how far ahead of cycle end students are warned
	expiryWarningDays = 3
)

// CronService schedules the recurring background jobs. All schedules run in
// the facility timezone.
type CronService struct {
	cron        *cron.Cron
	report      *ReportService
	notify      *NotifyService
	paymentRepo repositories.PaymentRepository
	scanRepo    repositories.ScanEventRepository
	refreshRepo repositories.RefreshTokenRepository
	notifRepo   repositories.NotificationRepository
	schedule    *mealtime.Schedule
}

// NewCronService creates a new cron service
func NewCronService(
	report *ReportService,
	notify *NotifyService,
	paymentRepo repositories.PaymentRepository,
	scanRepo repositories.ScanEventRepository,
	refreshRepo repositories.RefreshTokenRepository,
	notifRepo repositories.NotificationRepository,
	schedule *mealtime.Schedule,
) *CronService {
	return &CronService{
		cron:        cron.New(cron.WithLocation(schedule.Location())),
		report:      report,
		notify:      notify,
		paymentRepo: paymentRepo,
		scanRepo:    scanRepo,
		refreshRepo: refreshRepo,
		notifRepo:   notifRepo,
		schedule:    schedule,
	}
}

// Start registers all jobs and starts the scheduler
func (s *CronService) Start() error {
	jobs := []struct {
		spec string
		name string
		fn   func()
	}{
		{"0 6 * * *", "daily-report", s.sendDailyReport},
		{"0 9 * * *", "payment-expiry-warnings", s.sendExpiryWarnings},
		{"0 2 * * 0", "weekly-cleanup", s.runCleanup},
		{"0 * * * *", "outbox-health", s.checkOutboxHealth},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
		log.Printf("⏰ Scheduled job %s [%s]", job.name, job.spec)
	}

	s.cron.Start()
	log.Println("✅ Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}

// sendDailyReport sends yesterday's report to the admin group
func (s *CronService) sendDailyReport() {
	ctx := context.Background()

	yesterday := time.Now().In(s.schedule.Location()).AddDate(0, 0, -1)
	report, err := s.report.Daily(ctx, yesterday)
	if err != nil {
		log.Printf("❌ Daily report failed: %v", err)
		return
	}

	s.notify.EnqueueAdmin(ctx, s.report.FormatDaily(report))
	log.Printf("📊 Daily report queued [date: %s, scans: %d]", report.Date, report.TotalScans)
}

// sendExpiryWarnings warns students whose payment cycle ends soon
func (s *CronService) sendExpiryWarnings() {
	ctx := context.Background()

	day := mealtime.DateOf(s.schedule.Today(time.Now())).AddDate(0, 0, expiryWarningDays)
	expiring, err := s.paymentRepo.ListExpiring(ctx, day)
	if err != nil {
		log.Printf("❌ Expiry warning scan failed: %v", err)
		return
	}

	for i := range expiring {
		p := &expiring[i]
		if p.Student == nil {
			continue
		}
		s.notify.Enqueue(ctx, fmt.Sprintf("%d", p.Student.TgUserID), fmt.Sprintf(
			"⏳ Your mess payment cycle ends on %s. Renew before then to keep access.",
			p.CycleEnd.Format("2006-01-02"),
		))
	}

	if len(expiring) > 0 {
		log.Printf("⏳ Queued %d payment expiry warnings", len(expiring))
	}
}

// runCleanup prunes old scan events and expired refresh tokens
func (s *CronService) runCleanup() {
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -scanRetentionDays)
	removed, err := s.scanRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Scan event cleanup failed: %v", err)
	} else {
		log.Printf("🧹 Removed %d scan events older than %d days", removed, scanRetentionDays)
	}

	tokens, err := s.refreshRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
	} else if tokens > 0 {
		log.Printf("🧹 Removed %d expired refresh tokens", tokens)
	}
}

// checkOutboxHealth alerts admins when notifications are piling up dead
func (s *CronService) checkOutboxHealth() {
	ctx := context.Background()

	dead, err := s.notifRepo.CountByStatus(ctx, models.NotifyDead)
	if err != nil {
		log.Printf("❌ Outbox health check failed: %v", err)
		return
	}
	if dead > 0 {
		s.notify.EnqueueAdmin(ctx, fmt.Sprintf(
			"⚠️ %d notifications are in the dead letter queue and need attention.", dead))
	}
}
