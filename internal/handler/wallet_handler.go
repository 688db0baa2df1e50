package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	service service.WalletService
}

func NewWalletHandler(s service.WalletService) *WalletHandler {
	return &WalletHandler{service: s}
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	wallet, err := h.service.GetBalance(c.UserContext(), getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(wallet)
}

// GetTransactions lists the caller's wallet movements
// Query params: limit (default 10)
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	txs, err := h.service.History(c.UserContext(), getUserID(c), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}

// TopUp credits a customer's wallet at the counter.
func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	var req service.TopUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	entry, err := h.service.TopUp(c.UserContext(), userID, req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Wallet topped up", "data": entry})
}
