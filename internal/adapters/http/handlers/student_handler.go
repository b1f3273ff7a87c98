package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/pagination"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
	"github.com/Afsalkalladi/mess-management/internal/pkg/validate"
)

// StudentHandler handles student registration and QR endpoints
type StudentHandler struct {
	studentService *services.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// Register handles student registration
// @Summary Register a new student
// @Tags Students
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /students/register [post]
func (h *StudentHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.Name = strings.TrimSpace(input.Name)
	input.RollNo = strings.TrimSpace(input.RollNo)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	student, err := h.studentService.Register(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentExists):
			return response.Conflict(c, "Student already registered")
		default:
			return response.InternalServerError(c, "Failed to register student")
		}
	}

	return response.Created(c, "Registration submitted for approval", student)
}

// List lists students
// @Summary List students
// @Tags Students
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Router /students [get]
func (h *StudentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	students, total, err := h.studentService.List(c.Context(), status, params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list students")
	}

	return response.Success(c, "Students retrieved", pagination.NewResponse(students, params, total))
}

// Get returns one student
// @Summary Get a student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	student, err := h.studentService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to get student")
	}

	return response.Success(c, "Student retrieved", student)
}

// Approve approves a pending registration
// @Summary Approve a student registration
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id}/approve [post]
func (h *StudentHandler) Approve(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	student, err := h.studentService.Approve(c.Context(), id, adminIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.Conflict(c, "Student is already approved")
		default:
			return response.InternalServerError(c, "Failed to approve student")
		}
	}

	return response.Success(c, "Student approved", student)
}

// Deny denies a pending registration
// @Summary Deny a student registration
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id}/deny [post]
func (h *StudentHandler) Deny(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	student, err := h.studentService.Deny(c.Context(), id, adminIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.Conflict(c, "Student is already denied")
		default:
			return response.InternalServerError(c, "Failed to deny student")
		}
	}

	return response.Success(c, "Student denied", student)
}

// GetQR returns a student's current QR payload
// @Summary Get a student's QR payload
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id}/qr [get]
func (h *StudentHandler) GetQR(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	payload, err := h.studentService.GetQRPayload(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrStudentNotApproved):
			return response.Forbidden(c, "Student registration not approved")
		default:
			return response.InternalServerError(c, "Failed to get QR")
		}
	}

	return response.Success(c, "QR retrieved", fiber.Map{"qr_data": payload})
}

// RotateQR reissues a student's QR credentials
// @Summary Rotate a student's QR credentials
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /students/{id}/qr/rotate [post]
func (h *StudentHandler) RotateQR(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	payload, err := h.studentService.RotateQR(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, domain.ErrQRConflict):
			return response.Conflict(c, "Concurrent rotation in progress, try again")
		default:
			return response.InternalServerError(c, "Failed to rotate QR")
		}
	}

	return response.Success(c, "QR rotated", fiber.Map{"qr_data": payload})
}

// BulkRotateQR reissues QR credentials for every approved student
// @Summary Rotate QR credentials for all approved students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Response
// @Router /students/qr/rotate-all [post]
func (h *StudentHandler) BulkRotateQR(c *fiber.Ctx) error {
	result, err := h.studentService.BulkRotateQR(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to rotate QR codes")
	}

	return response.Success(c, "Bulk rotation finished", result)
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// adminIDFrom reads the authenticated admin ID from the request context
func adminIDFrom(c *fiber.Ctx) uint {
	if id, ok := c.Locals("adminID").(uint); ok {
		return id
	}
	return 0
}
