package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diftofficial/systemAplikaciaGYM/internal/services"
)

var kindStatus = map[services.Kind]int{
	services.KindInvalidInput:      fiber.StatusBadRequest,
	services.KindForbidden:         fiber.StatusForbidden,
	services.KindSessionNotFound:   fiber.StatusNotFound,
	services.KindAccountNotFound:   fiber.StatusNotFound,
	services.KindAccountExists:     fiber.StatusConflict,
	services.KindInsufficientFunds: fiber.StatusPaymentRequired,
	services.KindCapacityExceeded:  fiber.StatusConflict,
	services.KindAlreadyJoined:     fiber.StatusConflict,
	services.KindConflict:          fiber.StatusConflict,
	services.KindStoreUnavailable:  fiber.StatusServiceUnavailable,
}

func mapServiceError(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process request",
			"code":  services.KindUnknown,
		})
	}

	message := err.Error()
	if kind == services.KindStoreUnavailable {
		message = "Storage is temporarily unavailable, please retry"
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "code": kind})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  services.KindInvalidInput,
	})
}
