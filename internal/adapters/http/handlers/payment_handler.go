package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/pagination"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
	"github.com/Afsalkalladi/mess-management/internal/pkg/validate"
)

// dateLayout is the wire format for calendar dates
const dateLayout = "2006-01-02"

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// UploadRequest represents a payment upload body
type UploadRequest struct {
	StudentID     uint    `json:"student_id"`
	CycleStart    string  `json:"cycle_start"`
	CycleEnd      string  `json:"cycle_end"`
	Amount        float64 `json:"amount"`
	ScreenshotURL string  `json:"screenshot_url"`
}

// Upload handles a payment screenshot upload
// @Summary Upload a payment for review
// @Tags Payments
// @Accept json
// @Produce json
// @Param body body UploadRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /payments/upload [post]
func (h *PaymentHandler) Upload(c *fiber.Ctx) error {
	var req UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cycleStart, cycleEnd, err := parseCycle(req.CycleStart, req.CycleEnd)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := &services.UploadInput{
		StudentID:     req.StudentID,
		CycleStart:    cycleStart,
		CycleEnd:      cycleEnd,
		Amount:        req.Amount,
		ScreenshotURL: req.ScreenshotURL,
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	payment, err := h.paymentService.Upload(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrInvalidCycle):
			return response.BadRequest(c, "Cycle end must not be before cycle start")
		case errors.Is(err, services.ErrPaymentOverlap):
			return response.Conflict(c, "A payment already covers part of this cycle")
		default:
			return response.InternalServerError(c, "Failed to upload payment")
		}
	}

	return response.Created(c, "Payment submitted for review", payment)
}

// RecordOfflineRequest represents a cash payment body
type RecordOfflineRequest struct {
	StudentID  uint    `json:"student_id"`
	CycleStart string  `json:"cycle_start"`
	CycleEnd   string  `json:"cycle_end"`
	Amount     float64 `json:"amount"`
}

// RecordOffline records a cash payment taken at the desk
// @Summary Record an offline cash payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param body body RecordOfflineRequest true "Payment data"
// @Success 201 {object} response.Response
// @Router /payments/offline [post]
func (h *PaymentHandler) RecordOffline(c *fiber.Ctx) error {
	var req RecordOfflineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cycleStart, cycleEnd, err := parseCycle(req.CycleStart, req.CycleEnd)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := &services.RecordOfflineInput{
		StudentID:  req.StudentID,
		CycleStart: cycleStart,
		CycleEnd:   cycleEnd,
		Amount:     req.Amount,
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	payment, err := h.paymentService.RecordOffline(c.Context(), input, adminIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrInvalidCycle):
			return response.BadRequest(c, "Cycle end must not be before cycle start")
		case errors.Is(err, services.ErrPaymentOverlap):
			return response.Conflict(c, "A payment already covers part of this cycle")
		default:
			return response.InternalServerError(c, "Failed to record payment")
		}
	}

	return response.Created(c, "Payment recorded", payment)
}

// Verify approves an uploaded payment
// @Summary Verify a payment
// @Tags Payments
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/{id}/verify [post]
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	return h.review(c, h.paymentService.Verify, "Payment verified")
}

// Deny rejects an uploaded payment
// @Summary Deny a payment
// @Tags Payments
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/{id}/deny [post]
func (h *PaymentHandler) Deny(c *fiber.Ctx) error {
	return h.review(c, h.paymentService.Deny, "Payment denied")
}

// ListPending lists payments awaiting review
// @Summary List payments awaiting review
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response
// @Router /payments/pending [get]
func (h *PaymentHandler) ListPending(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.ListPending(c.Context(), params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved", pagination.NewResponse(payments, params, total))
}

// ListByStudent lists a student's payments
// @Summary List a student's payments
// @Tags Payments
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Router /students/{id}/payments [get]
func (h *PaymentHandler) ListByStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.ListByStudent(c.Context(), id, params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved", pagination.NewResponse(payments, params, total))
}

// review handles the shared verify/deny flow
func (h *PaymentHandler) review(c *fiber.Ctx, decide func(ctx context.Context, paymentID, adminID uint) (*models.Payment, error), message string) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	payment, err := decide(c.Context(), id, adminIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrPaymentNotReviewable):
			return response.Conflict(c, "Payment is not awaiting review")
		default:
			return response.InternalServerError(c, "Failed to review payment")
		}
	}

	return response.Success(c, message, payment)
}

// parseCycle parses and validates the cycle date strings
func parseCycle(start, end string) (time.Time, time.Time, error) {
	cycleStart, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("cycle_start must be a date in YYYY-MM-DD format")
	}
	cycleEnd, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("cycle_end must be a date in YYYY-MM-DD format")
	}
	return cycleStart, cycleEnd, nil
}
