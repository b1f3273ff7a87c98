package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
)

// StaffHandler handles staff token administration endpoints
type StaffHandler struct {
	staffService *services.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService *services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// IssueRequest represents a token issue body
type IssueRequest struct {
	Label     string `json:"label"`
	ExpiresAt string `json:"expires_at"`
}

// Issue creates a new scanner token. The plaintext token appears in this
// response only and cannot be recovered later.
// @Summary Issue a scanner token
// @Tags StaffTokens
// @Accept json
// @Produce json
// @Param body body IssueRequest true "Token data"
// @Success 201 {object} response.Response
// @Router /staff-tokens [post]
func (h *StaffHandler) Issue(c *fiber.Ctx) error {
	var req IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		return response.BadRequest(c, "label is required")
	}

	input := &services.IssueInput{Label: req.Label}
	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return response.BadRequest(c, "expires_at must be an RFC3339 timestamp")
		}
		input.ExpiresAt = &expiresAt
	}

	result, err := h.staffService.Issue(c.Context(), input, adminIDFrom(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to issue staff token")
	}

	return response.Created(c, "Staff token issued", result)
}

// Revoke deactivates a scanner token
// @Summary Revoke a scanner token
// @Tags StaffTokens
// @Produce json
// @Param id path int true "Token ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /staff-tokens/{id}/revoke [post]
func (h *StaffHandler) Revoke(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid token ID")
	}

	if err := h.staffService.Revoke(c.Context(), id, adminIDFrom(c)); err != nil {
		if errors.Is(err, services.ErrStaffTokenNotFound) {
			return response.NotFound(c, "Staff token not found")
		}
		return response.InternalServerError(c, "Failed to revoke staff token")
	}

	return response.Success(c, "Staff token revoked", nil)
}

// List lists all scanner tokens
// @Summary List scanner tokens
// @Tags StaffTokens
// @Produce json
// @Success 200 {object} response.Response
// @Router /staff-tokens [get]
func (h *StaffHandler) List(c *fiber.Ctx) error {
	tokens, err := h.staffService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list staff tokens")
	}

	return response.Success(c, "Staff tokens retrieved", tokens)
}
