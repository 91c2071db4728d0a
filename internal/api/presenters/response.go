package presenters

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"recipe-api/domain"
)

func SuccessResponse(c *fiber.Ctx, data any, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

// ErrorResponse maps a service error onto the wire. Internal causes are
// never serialized; only the kind, the safe message and any field detail
// reach the caller.
func ErrorResponse(c *fiber.Ctx, message string, err error) error {
	var serviceErr *domain.Error
	if errors.As(err, &serviceErr) {
		payload := fiber.Map{
			"message":   serviceErr.Message,
			"errorKind": serviceErr.Kind,
		}
		if len(serviceErr.Detail) > 0 {
			payload["detail"] = serviceErr.Detail
		}
		return c.Status(serviceErr.Status).JSON(payload)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message":   message,
		"errorKind": domain.KindPersistence,
	})
}
