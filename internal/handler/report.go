package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/greencycle/greencycle-go/internal/middleware"
	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/internal/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Submit handles POST /api/dumps
func (h *ReportHandler) Submit(c fiber.Ctx) error {
	var req model.DumpReportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidBody, "Invalid JSON body")
	}
	if req.UserID <= 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, "userId is required")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, "latitude must be between -90 and 90")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, "longitude must be between -180 and 180")
	}
	req.ReportType = middleware.TruncateRunes(strings.TrimSpace(req.ReportType), middleware.MaxReportTypeLen)
	req.Description = middleware.TruncateRunes(req.Description, middleware.MaxDescriptionLen)
	req.Location = middleware.TruncateRunes(req.Location, middleware.MaxLocationLen)

	report, err := h.svc.Submit(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReport) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, err.Error())
		}
		middleware.Logger.Error().Err(err).Msg("submit dump report failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to submit report")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// List handles GET /api/dumps
func (h *ReportHandler) List(c fiber.Ctx) error {
	reports, err := h.svc.List(c.Context())
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("list dump reports failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to list reports")
	}
	return c.JSON(reports)
}
