package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type statusMapping struct {
	target  error
	status  int
	message string
}

var statusMappings []statusMapping

// RegisterErrorStatus maps a sentinel error to an HTTP status and user-facing
// message. Called once from bootstrap; not safe for concurrent registration.
func RegisterErrorStatus(target error, status int, message string) {
	statusMappings = append(statusMappings, statusMapping{target: target, status: status, message: message})
}

// ErrorHandlerMiddleware converts errors returned by handlers into the
// uniform response envelope. Unrecognized errors become an opaque 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		for _, m := range statusMappings {
			if errors.Is(err, m.target) {
				msg := m.message
				if msg == "" {
					msg = m.target.Error()
				}
				return ctx.Status(m.status).JSON(ErrorResponse(m.status, msg))
			}
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(
			ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
