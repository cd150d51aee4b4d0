package serverutils

import (
	"errors"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as an ErrorBody.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		body := ErrorResponse(code, "Internal server error")

		var fiberErr *fiber.Error
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			code = fiber.StatusBadRequest
			body = ErrorResponse(code, "Validation failed")
			body.Errors = validationErr.Fields
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			body = ErrorResponse(code, fiberErr.Message)
		case errors.Is(err, contract.ErrReviewNotFound):
			code = fiber.StatusNotFound
			body = ErrorResponse(code, err.Error())
		default:
			log.Error("HTTP", "Unhandled error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}

		return ctx.Status(code).JSON(body)
	}
}
