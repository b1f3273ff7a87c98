package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/pagination"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
)

// ClosureHandler handles mess closure endpoints
type ClosureHandler struct {
	closureService *services.ClosureService
}

// NewClosureHandler creates a new closure handler
func NewClosureHandler(closureService *services.ClosureService) *ClosureHandler {
	return &ClosureHandler{closureService: closureService}
}

// CreateClosureRequest represents a closure declaration body
type CreateClosureRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Reason   string `json:"reason"`
}

// Create declares a mess closure
// @Summary Declare a mess closure
// @Tags Closures
// @Accept json
// @Produce json
// @Param body body CreateClosureRequest true "Closure data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /closures [post]
func (h *ClosureHandler) Create(c *fiber.Ctx) error {
	var req CreateClosureRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return response.BadRequest(c, "reason is required")
	}

	fromDate, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		return response.BadRequest(c, "from_date must be a date in YYYY-MM-DD format")
	}
	toDate, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		return response.BadRequest(c, "to_date must be a date in YYYY-MM-DD format")
	}

	input := &services.ClosureInput{
		FromDate: fromDate,
		ToDate:   toDate,
		Reason:   req.Reason,
	}

	closure, err := h.closureService.Create(c.Context(), input, adminIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRange):
			return response.BadRequest(c, "to_date must not be before from_date")
		case errors.Is(err, services.ErrClosureOverlap):
			return response.Conflict(c, "An existing closure overlaps this range")
		default:
			return response.InternalServerError(c, "Failed to create closure")
		}
	}

	return response.Created(c, "Closure declared", closure)
}

// List lists closures
// @Summary List mess closures
// @Tags Closures
// @Produce json
// @Success 200 {object} response.Response
// @Router /closures [get]
func (h *ClosureHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	closures, total, err := h.closureService.List(c.Context(), params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list closures")
	}

	return response.Success(c, "Closures retrieved", pagination.NewResponse(closures, params, total))
}
