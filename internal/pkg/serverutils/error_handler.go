package serverutils

import (
	"errors"

	"doc-assistant-gw/pkg/scope"
	"doc-assistant-gw/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of controllers into
// the standard response envelope. Domain sentinels get dedicated status
// codes so the client can react (e.g. a busy session is retriable).
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		switch {
		case errors.Is(err, session.ErrSessionBusy):
			code = fiber.StatusConflict
		case errors.Is(err, scope.ErrSelectionLimit):
			code = fiber.StatusConflict
		case errors.Is(err, session.ErrAuthRequired):
			code = fiber.StatusUnauthorized
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
