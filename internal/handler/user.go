package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/greencycle/greencycle-go/internal/middleware"
	"github.com/greencycle/greencycle-go/internal/model"
	"github.com/greencycle/greencycle-go/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register handles POST /api/users
func (h *UserHandler) Register(c fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidBody, "Invalid JSON body")
	}
	req.Name = middleware.TruncateRunes(req.Name, middleware.MaxNameLen)

	resp, err := h.svc.Register(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			return middleware.ErrorResponse(c, fiber.StatusConflict, middleware.CodeConflict, "Email already registered")
		}
		middleware.Logger.Error().Err(err).Msg("register user failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Failed to register user")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
