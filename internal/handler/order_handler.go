package handler

import (
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type assignRequest struct {
	EmployeeID string `json:"employee_id"`
}

type discountRequest struct {
	DiscountType string `json:"discount_type"`
}

type approveRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
}

func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	var req service.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.PlaceOrder(c.UserContext(), req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// GetOrders lists orders for staff
// Query params: status (comma separated), user_id, employee_id, limit
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		UserID:     c.Query("user_id"),
		EmployeeID: c.Query("employee_id"),
		Limit:      c.QueryInt("limit", 0),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, model.OrderStatus(strings.TrimSpace(s)))
		}
	}

	orders, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GetMyOrders lists the caller's own orders
func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), repository.OrderFilter{UserID: getUserID(c)})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetNewOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListNewOrders(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetAssignedOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAssignedOrders(c.UserContext(), getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GetOrderHistory lists finished orders. Reviewers may pass ?employee_id=
// (empty for everyone); other staff only see their own.
func (h *OrderHandler) GetOrderHistory(c *fiber.Ctx) error {
	employeeID := getUserID(c)
	if hasPrivilege(c, model.PrivDiscountReview) {
		employeeID = c.Query("employee_id")
	}
	orders, err := h.service.ListOrderHistory(c.UserContext(), employeeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetAwaitingDiscount(c *fiber.Ctx) error {
	orders, err := h.service.ListAwaitingDiscount(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.loadVisible(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// AssignOrder takes an order. Managers may assign it to someone else.
func (h *OrderHandler) AssignOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	var req assignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}
	employeeID := getUserID(c)
	if req.EmployeeID != "" && hasPrivilege(c, model.PrivDiscountReview) {
		employeeID = req.EmployeeID
	}

	order, err := h.service.AssignOrder(c.UserContext(), id, employeeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order assigned", "data": order})
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, report, err := h.service.UpdateStatus(c.UserContext(), id, req.Status, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order, "stock": report})
}

func (h *OrderHandler) CompleteOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	order, report, err := h.service.CompleteOrder(c.UserContext(), id, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order completed", "data": order, "stock": report})
}

// CancelOrder is open to staff and to the customer who placed the order.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	existing, err := h.loadOwnedOrFulfiller(c)
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.service.CancelOrder(c.UserContext(), existing.ID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled", "data": order})
}

func (h *OrderHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	order, err := h.service.MarkPaid(c.UserContext(), id, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order paid", "data": order})
}

// PayWithWallet is open to staff and to the customer who placed the order.
func (h *OrderHandler) PayWithWallet(c *fiber.Ctx) error {
	existing, err := h.loadOwnedOrFulfiller(c)
	if err != nil {
		return respondError(c, err)
	}
	order, payment, err := h.service.PayWithWallet(c.UserContext(), existing.ID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order paid", "data": order, "payment": payment})
}

func (h *OrderHandler) RequestDiscount(c *fiber.Ctx) error {
	existing, err := h.loadOwnedOrFulfiller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req discountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.RequestDiscount(c.UserContext(), existing.ID, req.DiscountType, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Discount requested", "data": order})
}

func (h *OrderHandler) SkipDiscount(c *fiber.Ctx) error {
	existing, err := h.loadOwnedOrFulfiller(c)
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.service.SkipDiscount(c.UserContext(), existing.ID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Discount skipped", "data": order})
}

// ApproveDiscount applies the requested discount. A missing or zero
// percentage uses the configured default.
func (h *OrderHandler) ApproveDiscount(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	var req approveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	order, applied, err := h.service.ApproveDiscount(c.UserContext(), id, req.Percentage, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if !applied {
		return c.JSON(fiber.Map{"message": "No discount was requested", "data": order})
	}
	return c.JSON(fiber.Map{"message": "Discount approved", "data": order})
}

func (h *OrderHandler) DenyDiscount(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	order, err := h.service.DenyDiscount(c.UserContext(), id, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Discount denied", "data": order})
}

var errInvalidOrderID = &service.ValidationError{Message: "Invalid order ID"}

// loadVisible returns the order when the caller may see it. Customers only
// see their own orders; anything else is reported as not found.
func (h *OrderHandler) loadVisible(c *fiber.Ctx) (*model.Order, error) {
	return h.loadFor(c, model.PrivOrderView)
}

func (h *OrderHandler) loadOwnedOrFulfiller(c *fiber.Ctx) (*model.Order, error) {
	return h.loadFor(c, model.PrivOrderFulfill)
}

func (h *OrderHandler) loadFor(c *fiber.Ctx, staffPrivilege string) (*model.Order, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, errInvalidOrderID
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if !hasPrivilege(c, staffPrivilege) && order.UserID != getUserID(c) {
		return nil, service.ErrOrderNotFound
	}
	return order, nil
}
