package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/pagination"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
)

// ReportHandler handles reporting and scan audit endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Daily returns the daily operations report
// @Summary Get the daily report
// @Tags Reports
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Response
// @Router /reports/daily [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	at := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return response.BadRequest(c, "date must be in YYYY-MM-DD format")
		}
		// Noon avoids timezone edge flips when mapping the date to a facility day
		at = parsed.Add(12 * time.Hour)
	}

	report, err := h.reportService.Daily(c.Context(), at)
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Report built", report)
}

// ListScans lists scan events in a time window
// @Summary List scan events
// @Tags Reports
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param result query string false "Filter by result"
// @Success 200 {object} response.Response
// @Router /scans [get]
func (h *ReportHandler) ListScans(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return response.BadRequest(c, "from must be in YYYY-MM-DD format")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return response.BadRequest(c, "to must be in YYYY-MM-DD format")
		}
		to = parsed.AddDate(0, 0, 1)
	}

	events, total, err := h.reportService.ListScans(c.Context(), from, to, c.Query("result"), params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list scan events")
	}

	return response.Success(c, "Scan events retrieved", pagination.NewResponse(events, params, total))
}

// ListStudentScans lists one student's scan history
// @Summary List a student's scan history
// @Tags Reports
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Router /students/{id}/scans [get]
func (h *ReportHandler) ListStudentScans(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	params := pagination.GetParams(c)

	events, total, err := h.reportService.ListStudentScans(c.Context(), id, params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list scan events")
	}

	return response.Success(c, "Scan events retrieved", pagination.NewResponse(events, params, total))
}

// Payments returns the payment status summary
// @Summary Get the payment status summary
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Response
// @Router /reports/payments [get]
func (h *ReportHandler) Payments(c *fiber.Ctx) error {
	summary, err := h.reportService.Payments(c.Context(), time.Now())
	if err != nil {
		return response.InternalServerError(c, "Failed to build payment summary")
	}

	return response.Success(c, "Payment summary built", summary)
}

// ListCuts lists mess cuts in a date range
// @Summary List mess cuts in a range
// @Tags Reports
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /reports/mess-cuts [get]
func (h *ReportHandler) ListCuts(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return response.BadRequest(c, "from must be in YYYY-MM-DD format")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return response.BadRequest(c, "to must be in YYYY-MM-DD format")
		}
		to = parsed
	}

	cuts, total, err := h.reportService.ListCuts(c.Context(), from, to, params.Limit, params.Offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list mess cuts")
	}

	return response.Success(c, "Mess cuts retrieved", pagination.NewResponse(cuts, params, total))
}
