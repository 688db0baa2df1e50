package handler

import (
	"errors"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrStockNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrIngredientNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCartItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyAssigned),
		errors.Is(err, service.ErrDiscountNotAllowed),
		errors.Is(err, service.ErrStockHasHistory),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrEmailExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidPercentage),
		errors.Is(err, service.ErrCartEmpty):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, service.ErrWalletUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok || userID == "" {
		return model.SystemActor
	}
	return userID
}

func hasPrivilege(c *fiber.Ctx, code string) bool {
	privileges, _ := c.Locals(middleware.LocalPrivileges).([]string)
	for _, p := range privileges {
		if p == code {
			return true
		}
	}
	return false
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func invalidID(c *fiber.Ctx, what string) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid " + what + " ID"})
}
