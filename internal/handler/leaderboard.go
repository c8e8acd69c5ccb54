package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/greencycle/greencycle-go/internal/middleware"
	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/internal/service"
)

type LeaderboardHandler struct {
	ledger *service.ScoreLedger
	users  *service.UserService
}

func NewLeaderboardHandler(ledger *service.ScoreLedger, users *service.UserService) *LeaderboardHandler {
	return &LeaderboardHandler{ledger: ledger, users: users}
}

// GetLeaderboard handles GET /api/leaderboard. A store failure yields an
// empty board rather than an error status.
func (h *LeaderboardHandler) GetLeaderboard(c fiber.Ctx) error {
	res := h.ledger.GetLeaderboard(c.Context())
	return c.JSON(res.Entries)
}

// Test handles GET /api/leaderboard/test
func (h *LeaderboardHandler) Test(c fiber.Ctx) error {
	n, err := h.users.Count(c.Context())
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("leaderboard test: count users failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to count users")
	}
	return c.SendString(fmt.Sprintf("Leaderboard service is working. Total users: %d", n))
}

// Me handles GET /api/leaderboard/me
func (h *LeaderboardHandler) Me(c fiber.Ctx) error {
	user, done, err := h.currentUser(c)
	if done {
		return err
	}

	stats, err := h.ledger.GetUserStats(c.Context(), user.ID)
	if err != nil {
		middleware.Logger.Error().Err(err).Int64("user_id", user.ID).Msg("load user stats failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to load stats")
	}
	if stats == nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "User not found")
	}
	return c.JSON(stats)
}

// UpdateScore handles POST /api/leaderboard/update-score
func (h *LeaderboardHandler) UpdateScore(c fiber.Ctx) error {
	var req model.UpdateScoreRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidBody, "Invalid JSON body")
	}
	kind, errMsg := middleware.ValidateActivityType(req.ActivityType)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, errMsg)
	}
	points := 0
	if req.Points != nil {
		points = *req.Points
	}

	user, done, err := h.currentUser(c)
	if done {
		return err
	}

	if err := h.ledger.RecordActivity(c.Context(), user.ID, service.ParseActivityKind(kind), points); err != nil {
		if errors.Is(err, service.ErrScoreLimit) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, "points would exceed the maximum score")
		}
		middleware.Logger.Error().Err(err).Int64("user_id", user.ID).Str("activity", kind).Msg("record activity failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to update score")
	}
	return c.SendString("Score updated successfully")
}

// currentUser resolves the gateway identity to a stored user. When done is
// true the response has already been written and err should be returned.
func (h *LeaderboardHandler) currentUser(c fiber.Ctx) (user *model.User, done bool, err error) {
	email := middleware.CurrentUserEmail(c)
	if email == "" {
		return nil, true, middleware.ErrorResponse(c, fiber.StatusUnauthorized, middleware.CodeUnauthorized, "Authentication required")
	}

	user, err = h.users.FindByEmail(c.Context(), email)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("lookup current user failed")
		return nil, true, middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to lookup user")
	}
	if user == nil {
		return nil, true, middleware.ErrorResponse(c, fiber.StatusNotFound, middleware.CodeNotFound, "User not found")
	}
	return user, false, nil
}
