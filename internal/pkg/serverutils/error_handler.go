package serverutils

import (
	"errors"

	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

var errorLogger logger.ILogger = logger.NewNopLogger()

// SetErrorLogger routes unexpected handler errors to log.
func SetErrorLogger(log logger.ILogger) {
	errorLogger = log
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, apperror.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrMalformed),
		errors.Is(err, apperror.ErrUnsupported):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler writes err as an ErrorResponse. Anything not classified is a
// generic 500 and its detail only goes to the log.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := StatusFor(err)

	message := apperror.Public(err)
	var fiberErr *fiber.Error
	if message == "" && errors.As(err, &fiberErr) {
		message = fiberErr.Message
	}
	if code == fiber.StatusInternalServerError {
		errorLogger.Error("HTTP", "Unhandled error", map[string]interface{}{
			"error": err.Error(), "method": ctx.Method(), "path": ctx.Path(),
		})
		message = "Internal Server Error"
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
