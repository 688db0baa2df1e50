package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext(), getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *CartHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req service.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := h.service.AddItem(c.UserContext(), getUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Added to cart", "data": item})
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "cart item")
	}
	var req cartQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := h.service.UpdateItem(c.UserContext(), getUserID(c), id, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated", "data": item})
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "cart item")
	}
	if err := h.service.RemoveItem(c.UserContext(), getUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from cart"})
}

func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	cleared, err := h.service.Clear(c.UserContext(), getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if !cleared {
		return c.JSON(fiber.Map{"message": "Cart was already empty"})
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// Checkout places one order per cart line. Body is optional.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}
	result, err := h.service.Checkout(c.UserContext(), getUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Checkout complete", "data": result})
}
