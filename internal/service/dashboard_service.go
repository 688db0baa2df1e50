package service

import (
	"context"
	"time"

	"go-pos-ws/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, days int) (*repository.DashboardStats, error)
}

type dashboardService struct {
	historyRepo   repository.StockHistoryRepository
	dashboardRepo repository.DashboardRepository
}

func NewDashboardService(historyRepo repository.StockHistoryRepository, dashboardRepo repository.DashboardRepository) DashboardService {
	return &dashboardService{historyRepo: historyRepo, dashboardRepo: dashboardRepo}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.historyRepo.GetStockMovement(ctx, startDate, endDate)
}

// GetDashboardStats reports revenue over the last days.
func (s *dashboardService) GetDashboardStats(ctx context.Context, days int) (*repository.DashboardStats, error) {
	return s.dashboardRepo.GetDashboardStats(ctx, time.Now().AddDate(0, 0, -days))
}
