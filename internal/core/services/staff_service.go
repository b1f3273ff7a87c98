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
	"github.com/Afsalkalladi/mess-management/internal/pkg/password"
)

// Staff token errors
var (
	ErrStaffTokenInvalid  = errors.New("staff token is invalid or revoked")
	ErrStaffTokenNotFound = errors.New("staff token not found")
)

// staffTokenBytes is the entropy of an issued scanner token
const staffTokenBytes = 32

// StaffService issues and verifies scanner tokens. Tokens are shown in full
// exactly once at issue time; only their SHA-256 hash is stored.
type StaffService struct {
	staffRepo repositories.StaffTokenRepository
	auditRepo repositories.AuditLogRepository
}

// NewStaffService creates a new staff service
func NewStaffService(staffRepo repositories.StaffTokenRepository, auditRepo repositories.AuditLogRepository) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
		auditRepo: auditRepo,
	}
}

// IssueInput represents a token issue request
type IssueInput struct {
	Label     string     `json:"label" validate:"required,max=100"`
	ExpiresAt *time.Time `json:"-"`
}

// IssueOutput carries the one-time plaintext token
type IssueOutput struct {
	Token     *models.StaffToken `json:"token"`
	Plaintext string             `json:"plaintext"`
}

// Issue creates a new scanner token
func (s *StaffService) Issue(ctx context.Context, input *IssueInput, adminID uint) (*IssueOutput, error) {
	plaintext, err := password.GenerateToken(staffTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff token: %w", err)
	}

	token := &models.StaffToken{
		Label:     input.Label,
		TokenHash: password.HashToken(plaintext),
		ExpiresAt: input.ExpiresAt,
		Active:    true,
	}
	if err := s.staffRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	s.audit(ctx, adminID, "staff_token.issued", token.ID)
	log.Printf("🎫 Staff token issued [id: %d, label: %s]", token.ID, token.Label)
	return &IssueOutput{Token: token, Plaintext: plaintext}, nil
}

// VerifyToken resolves a presented plaintext token to an active staff token
func (s *StaffService) VerifyToken(ctx context.Context, plaintext string) (*models.StaffToken, error) {
	token, err := s.staffRepo.GetByHash(ctx, password.HashToken(plaintext))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffTokenInvalid
		}
		return nil, err
	}
	if !token.IsValid() {
		return nil, ErrStaffTokenInvalid
	}
	return token, nil
}

// Revoke deactivates a token so scanners holding it stop working
func (s *StaffService) Revoke(ctx context.Context, tokenID, adminID uint) error {
	if _, err := s.staffRepo.GetByID(ctx, tokenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffTokenNotFound
		}
		return err
	}

	if err := s.staffRepo.Revoke(ctx, tokenID); err != nil {
		return err
	}

	s.audit(ctx, adminID, "staff_token.revoked", tokenID)
	log.Printf("🎫 Staff token revoked [id: %d, by admin: %d]", tokenID, adminID)
	return nil
}

// List lists all staff tokens
func (s *StaffService) List(ctx context.Context) ([]models.StaffToken, error) {
	return s.staffRepo.List(ctx)
}

func (s *StaffService) audit(ctx context.Context, adminID uint, event string, tokenID uint) {
	entry := &models.AuditLog{
		ActorType: string(domain.ActorAdmin),
		ActorID:   strconv.FormatUint(uint64(adminID), 10),
		EventType: event,
		Payload:   fmt.Sprintf(`{"token_id":%d}`, tokenID),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit entry %s: %v", event, err)
	}
}
