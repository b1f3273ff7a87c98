package services

import (
	"context"
	"log"
	"time"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/adapters/telegram"
)

const (
	notifyBatchSize  = 20
	notifyMaxRetries = 3
)

// NotifyService implements a notification outbox. Callers enqueue rows and a
// background worker delivers them through Telegram, so delivery failures never
// block or roll back business operations.
type NotifyService struct {
	notifRepo repositories.NotificationRepository
	notifier  *telegram.Notifier
}

// NewNotifyService creates a new notify service. A nil notifier disables
// delivery (rows stay PENDING) so the rest of the system works without a bot.
func NewNotifyService(notifRepo repositories.NotificationRepository, notifier *telegram.Notifier) *NotifyService {
	return &NotifyService{
		notifRepo: notifRepo,
		notifier:  notifier,
	}
}

// Enqueue records a notification for asynchronous delivery. Errors are logged
// and swallowed: a failed enqueue must never fail the calling operation.
func (s *NotifyService) Enqueue(ctx context.Context, recipient, message string) {
	notification := &models.Notification{
		Recipient:  recipient,
		Message:    message,
		Status:     models.NotifyPending,
		MaxRetries: notifyMaxRetries,
	}

	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("❌ Failed to enqueue notification for %s: %v", recipient, err)
	}
}

// EnqueueAdmin records a notification for the admin group
func (s *NotifyService) EnqueueAdmin(ctx context.Context, message string) {
	s.Enqueue(ctx, models.RecipientAdminGroup, message)
}

// StartWorker launches the outbox worker. It drains pending notifications on
// the given interval until ctx is cancelled.
func (s *NotifyService) StartWorker(ctx context.Context, interval time.Duration) {
	if s.notifier == nil {
		log.Println("⚠️ Telegram notifier disabled, notification worker not started")
		return
	}

	go func() {
		log.Printf("📤 Notification worker started [interval: %s]", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("🛑 Notification worker stopped")
				return
			case <-ticker.C:
				s.ProcessPending(ctx)
			}
		}
	}()
}

// ProcessPending drains one batch of pending notifications and returns how
// many were delivered
func (s *NotifyService) ProcessPending(ctx context.Context) int {
	if s.notifier == nil {
		return 0
	}

	pending, err := s.notifRepo.ClaimPending(ctx, notifyBatchSize)
	if err != nil {
		log.Printf("❌ Failed to claim pending notifications: %v", err)
		return 0
	}

	sent := 0
	for i := range pending {
		n := &pending[i]
		if err := s.notifier.Deliver(n.Recipient, n.Message); err != nil {
			n.RetryCount++
			dead := !n.CanRetry()
			if dead {
				log.Printf("💀 Notification %d to %s moved to dead letter: %v", n.ID, n.Recipient, err)
			}
			if markErr := s.notifRepo.MarkFailed(ctx, n.ID, err.Error(), dead); markErr != nil {
				log.Printf("❌ Failed to mark notification %d failed: %v", n.ID, markErr)
			}
			continue
		}

		if err := s.notifRepo.MarkSent(ctx, n.ID, time.Now()); err != nil {
			log.Printf("❌ Failed to mark notification %d sent: %v", n.ID, err)
			continue
		}
		sent++
	}

	return sent
}
