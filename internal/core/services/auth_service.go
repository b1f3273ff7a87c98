package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/config"
	"github.com/Afsalkalladi/mess-management/internal/pkg/jwt"
	"github.com/Afsalkalladi/mess-management/internal/pkg/password"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminInactive      = errors.New("admin account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
)

// AuthService handles admin authentication
type AuthService struct {
	adminRepo        repositories.AdminUserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	adminRepo repositories.AdminUserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		adminRepo:        adminRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Admin        *models.AdminUserResponse `json:"admin"`
	AccessToken  string                    `json:"access_token"`
	RefreshToken string                    `json:"refresh_token"`
}

// Login authenticates an admin and issues a token pair
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find admin by username
	admin, err := s.adminRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, admin.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Check account is active
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	// 4. Issue tokens
	response, err := s.issueTokens(ctx, admin)
	if err != nil {
		return nil, err
	}

	log.Printf("🔓 Admin logged in [id: %d, username: %s]", admin.ID, admin.Username)
	return response, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A revoked or expired token fails closed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate the JWT itself
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Look up the stored token by hash
	stored, err := s.refreshTokenRepo.GetByHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if stored.IsRevoked() {
		// Reuse of a rotated token: revoke the whole session family
		if err := s.refreshTokenRepo.RevokeAllForAdmin(ctx, stored.AdminID); err != nil {
			log.Printf("⚠️ Failed to revoke token family for admin %d: %v", stored.AdminID, err)
		}
		return nil, ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 3. Load the admin
	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	// 4. Rotate: revoke the old token, issue a new pair
	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, admin)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.refreshTokenRepo.GetByHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // Already gone, nothing to do
		}
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, stored.ID)
}

// issueTokens creates and stores a fresh token pair for an admin
func (s *AuthService) issueTokens(ctx context.Context, admin *models.AdminUser) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(
		admin.ID, admin.Username, admin.Role,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(
		admin.ID, tokenID,
		s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	stored := &models.RefreshToken{
		AdminID:   admin.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.JWT.RefreshTokenDays) * 24 * time.Hour),
	}
	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Admin:        admin.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
