package handler

import (
	"time"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultReportDays = 7
	maxReportDays     = 365
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// queryDays reads ?days=, clamped to [1, maxReportDays].
func queryDays(c *fiber.Ctx) int {
	days := c.QueryInt("days", defaultReportDays)
	switch {
	case days <= 0:
		return defaultReportDays
	case days > maxReportDays:
		return maxReportDays
	}
	return days
}

// GetStockMovement returns daily inbound/outbound stock totals for charts.
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := queryDays(c)
	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"since":  time.Now().AddDate(0, 0, -days).Format("2006-01-02"),
		"data":   data,
	})
}

// GetDashboardStats returns counts plus completed-order revenue for ?days=.
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	days := queryDays(c)
	stats, err := h.service.GetDashboardStats(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"period": days, "data": stats})
}
