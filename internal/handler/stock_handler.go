package handler

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

type stockRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Threshold decimal.Decimal `json:"threshold"`
	Notes     string          `json:"notes"`
	Reason    string          `json:"reason"`
}

func (r stockRequest) toModel() *model.Stock {
	return &model.Stock{
		Name:      r.Name,
		Category:  r.Category,
		Quantity:  r.Quantity,
		Unit:      r.Unit,
		Threshold: r.Threshold,
		Notes:     r.Notes,
	}
}

type adjustRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

type deductRequest struct {
	IngredientName string          `json:"ingredient_name"`
	StockID        *uuid.UUID      `json:"stock_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	Reason         string          `json:"reason"`
}

// GetStocks lists stocks, optionally filtered by ?category=
func (h *StockHandler) GetStocks(c *fiber.Ctx) error {
	stocks, err := h.service.ListStocks(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stocks)
}

func (h *StockHandler) GetLowStocks(c *fiber.Ctx) error {
	stocks, err := h.service.ListLowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stocks)
}

func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "stock")
	}
	stock, err := h.service.GetStock(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stock)
}

func (h *StockHandler) GetHistory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "stock")
	}
	if _, err := h.service.GetStock(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	entries, err := h.service.ListHistory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// ResolveStock shows which stock an ingredient name would deduct from
// GET /api/v1/stocks/resolve?name=
func (h *StockHandler) ResolveStock(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	resolved, err := h.service.ResolveStock(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	similar, err := h.service.FindSimilarStocks(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"name": name, "resolved": resolved, "similar": similar})
}

func (h *StockHandler) CreateStock(c *fiber.Ctx) error {
	var req stockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	stock := req.toModel()
	if err := h.service.CreateStock(c.UserContext(), stock, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock created", "data": stock})
}

func (h *StockHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "stock")
	}
	var req stockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateStock(c.UserContext(), id, req.toModel(), req.Reason, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock updated", "data": updated})
}

// AdjustQuantity restocks (positive delta) or writes off (negative delta)
// PATCH /api/v1/stocks/:id/quantity
func (h *StockHandler) AdjustQuantity(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "stock")
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.AdjustQuantity(c.UserContext(), id, req.Delta, req.Reason, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": updated})
}

// Deduct removes an ingredient quantity by name, converting units as needed
// POST /api/v1/stocks/deduct
func (h *StockHandler) Deduct(c *fiber.Ctx) error {
	var req deductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	res, err := h.service.DeductIngredient(c.UserContext(), service.DeductRequest{
		IngredientName: req.IngredientName,
		StockID:        req.StockID,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Reason:         req.Reason,
		Actor:          getUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	if !res.Deducted {
		return c.Status(422).JSON(fiber.Map{"error": string(res.Failure), "data": res})
	}
	return c.JSON(fiber.Map{"message": "Stock deducted", "data": res})
}

func (h *StockHandler) DeleteStock(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "stock")
	}
	if err := h.service.DeleteStock(c.UserContext(), id, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock deleted"})
}
