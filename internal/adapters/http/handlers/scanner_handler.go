package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
	"github.com/Afsalkalladi/mess-management/internal/pkg/validate"
)

// ScannerHandler handles QR scan endpoints used by scanner devices
type ScannerHandler struct {
	scanService *services.ScanService
}

// NewScannerHandler creates a new scanner handler
func NewScannerHandler(scanService *services.ScanService) *ScannerHandler {
	return &ScannerHandler{scanService: scanService}
}

// Scan handles a QR scan
// @Summary Scan a student QR code
// @Tags Scanner
// @Accept json
// @Produce json
// @Param body body services.ScanInput true "Scanned QR payload"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /scanner/scan [post]
func (h *ScannerHandler) Scan(c *fiber.Ctx) error {
	var input services.ScanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	// Attribute the scan to the authenticated scanner token
	if id, ok := c.Locals("staffTokenID").(uint); ok {
		input.StaffTokenID = &id
	}

	result, err := h.scanService.ProcessScan(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidQR):
			return response.BadRequest(c, "Invalid QR code")
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, domain.ErrNoActiveMeal):
			return response.BadRequest(c, "No meal is currently being served")
		default:
			return response.InternalServerError(c, "Failed to process scan")
		}
	}

	return response.Success(c, result.Message, result)
}
