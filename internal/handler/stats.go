package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/greencycle/greencycle-go/internal/middleware"
	"github.com/greencycle/greencycle-go/internal/service"
)

type StatsHandler struct {
	users   *service.UserService
	reports *service.ReportService
}

func NewStatsHandler(users *service.UserService, reports *service.ReportService) *StatsHandler {
	return &StatsHandler{users: users, reports: reports}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	users, err := h.users.Count(c.Context())
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("stats: count users failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to fetch statistics")
	}
	reports, err := h.reports.List(c.Context())
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("stats: list reports failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to fetch statistics")
	}

	return c.JSON(fiber.Map{
		"totalUsers":   users,
		"totalReports": len(reports),
	})
}
