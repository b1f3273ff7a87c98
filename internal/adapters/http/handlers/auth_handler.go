package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/config"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
	"github.com/Afsalkalladi/mess-management/internal/pkg/validate"
)

// AuthHandler handles admin authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Login handles admin login
// @Summary Admin login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrAdminInactive):
			return response.Forbidden(c, "Account is inactive")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return response.Success(c, "Login successful", result)
}

// RefreshRequest represents refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles token refresh
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := h.refreshTokenFrom(c)
	if token == "" {
		return response.Unauthorized(c, "Refresh token required")
	}

	result, err := h.authService.Refresh(c.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			return response.Unauthorized(c, "Refresh token expired")
		case errors.Is(err, services.ErrTokenRevoked):
			return response.Unauthorized(c, "Refresh token revoked")
		case errors.Is(err, services.ErrInvalidToken):
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrAdminInactive):
			return response.Forbidden(c, "Account is inactive")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return response.Success(c, "Token refreshed", result)
}

// Logout handles logout
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := h.refreshTokenFrom(c); token != "" {
		if err := h.authService.Logout(c.Context(), token); err != nil {
			return response.InternalServerError(c, "Failed to logout")
		}
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out", nil)
}

// refreshTokenFrom reads the refresh token from cookie or body
func (h *AuthHandler) refreshTokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies("refresh_token"); token != "" {
		return token
	}
	var req RefreshRequest
	if err := c.BodyParser(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(time.Duration(h.cfg.JWT.AccessTokenMins) * time.Minute),
		HTTPOnly: true,
		Secure:   h.cfg.IsProd(),
		SameSite: "Lax",
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(time.Duration(h.cfg.JWT.RefreshTokenDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.IsProd(),
		SameSite: "Lax",
		Path:     "/",
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true, Path: "/"})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true, Path: "/"})
}
