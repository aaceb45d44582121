package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"notable-be/internal/pkg/apperror"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation: fiber.StatusBadRequest,
	apperror.KindAuth:       fiber.StatusUnauthorized,
	apperror.KindNotFound:   fiber.StatusNotFound,
	apperror.KindPermission: fiber.StatusForbidden,
	apperror.KindStorage:    fiber.StatusInternalServerError,
	apperror.KindInternal:   fiber.StatusInternalServerError,
}

var statusTitle = map[int]string{
	fiber.StatusBadRequest:          "Validation Error",
	fiber.StatusUnauthorized:        "Unauthorized",
	fiber.StatusNotFound:            "Not Found",
	fiber.StatusForbidden:           "Forbidden",
	fiber.StatusInternalServerError: "Internal Server Error",
}

// ErrorHandlerMiddleware translates the apperror taxonomy into HTTP
// responses. Internal and storage failures are reported opaquely; their
// detail belongs in the logs, not the response body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   statusTitle[fiberErr.Code],
				"message": fiberErr.Message,
			})
		}

		status := kindStatus[apperror.KindOf(err)]
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			message = "Something went wrong"
		}

		return ctx.Status(status).JSON(fiber.Map{
			"error":   statusTitle[status],
			"message": message,
		})
	}
}
