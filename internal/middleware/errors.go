package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidField = "INVALID_FIELD"
	CodeInvalidBody  = "INVALID_BODY"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorHandler is the app-level fallback for errors a handler returned
// instead of writing a response. Internal details never reach the client.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if asFiberError(err, &fe) {
		return ErrorResponse(c, fe.Code, codeForStatus(fe.Code), fe.Message)
	}

	Logger.Error().Err(err).
		Str("request_id", RequestID(c)).
		Str("path", sanitizePath(c.Path())).
		Msg("unhandled error")
	return ErrorResponse(c, fiber.StatusInternalServerError, CodeInternal, "Internal server error")
}

func asFiberError(err error, target **fiber.Error) bool {
	return errors.As(err, target)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeBadRequest
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeConflict
	case fiber.StatusTooManyRequests:
		return CodeRateLimited
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeBadRequest
}
