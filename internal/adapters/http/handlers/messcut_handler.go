package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/pagination"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
)

// MessCutHandler handles mess cut endpoints
type MessCutHandler struct {
	cutService *services.MessCutService
}

// NewMessCutHandler creates a new mess cut handler
func NewMessCutHandler(cutService *services.MessCutService) *MessCutHandler {
	return &MessCutHandler{cutService: cutService}
}

// ApplyRequest represents a mess cut request body
type ApplyRequest struct {
	StudentID uint   `json:"student_id"`
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
}

// Apply handles a student mess cut request
// @Summary Apply a mess cut
// @Tags MessCuts
// @Accept json
// @Produce json
// @Param body body ApplyRequest true "Cut range"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /mess-cuts [post]
func (h *MessCutHandler) Apply(c *fiber.Ctx) error {
	return h.apply(c, domain.CutByStudent)
}

// AdminApply handles an admin-applied mess cut which bypasses the cutoff rule
// @Summary Apply a mess cut as admin
// @Tags MessCuts
// @Accept json
// @Produce json
// @Param body body ApplyRequest true "Cut range"
// @Success 201 {object} response.Response
// @Router /admin/mess-cuts [post]
func (h *MessCutHandler) AdminApply(c *fiber.Ctx) error {
	return h.apply(c, domain.CutByAdmin)
}

func (h *MessCutHandler) apply(c *fiber.Ctx, appliedBy domain.CutAppliedBy) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.StudentID == 0 {
		return response.BadRequest(c, "student_id is required")
	}

	fromDate, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		return response.BadRequest(c, "from_date must be a date in YYYY-MM-DD format")
	}
	toDate, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		return response.BadRequest(c, "to_date must be a date in YYYY-MM-DD format")
	}

	input := &services.ApplyInput{
		StudentID: req.StudentID,
		FromDate:  fromDate,
		ToDate:    toDate,
	}

	cut, err := h.cutService.Apply(c.Context(), input, appliedBy, adminIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrStudentNotApproved):
			return response.Forbidden(c, "Student registration not approved")
		case errors.Is(err, services.ErrInvalidRange):
			return response.BadRequest(c, "to_date must not be before from_date")
		case errors.Is(err, services.ErrCutInPast):
			return response.BadRequest(c, "to_date must not be in the past")
		case errors.Is(err, services.ErrCutTooLate):
			return response.BadRequest(c,
				"Too late for this date. Earliest allowed start is "+h.cutService.EarliestFromDate().Format(dateLayout))
		case errors.Is(err, services.ErrCutOverlap):
			return response.Conflict(c, "An existing mess cut overlaps this range")
		default:
			return response.InternalServerError(c, "Failed to apply mess cut")
		}
	}

	return response.Created(c, "Mess cut applied", cut)
}

// ListByStudent lists a student's mess cuts
// @Summary List a student's mess cuts
// @Tags MessCuts
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Router /students/{id}/mess-cuts [get]
func (h *MessCutHandler) ListByStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	params := pagination.GetParams(c)

	cuts, total, err := h.cutService.ListByStudent(c.Context(), id, params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list mess cuts")
	}

	return response.Success(c, "Mess cuts retrieved", pagination.NewResponse(cuts, params, total))
}
