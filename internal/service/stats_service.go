package service

import (
	"autolot/internal/repositories"
	"autolot/models"
	"autolot/pkg/logger"
)

// dashboardRecentLimit caps the recent-activity blocks on the dashboard
const dashboardRecentLimit = 5

// DashboardStats is the aggregate snapshot shown on the admin dashboard
type DashboardStats struct {
	TotalCars       int `json:"total_cars"`
	AvailableCars   int `json:"available_cars"`
	TotalOrders     int `json:"total_orders"`
	PendingOrders   int `json:"pending_orders"`
	CompletedOrders int `json:"completed_orders"`
	TotalUsers      int `json:"total_users"`
}

// Dashboard bundles the stats with the latest orders and cars
type Dashboard struct {
	Stats        DashboardStats        `json:"stats"`
	RecentOrders []models.OrderSummary `json:"recent_orders"`
	RecentCars   []*models.Car         `json:"recent_cars"`
}

type StatsServiceInterface interface {
	GetDashboard() (*Dashboard, error)
}

type StatsService struct {
	carRepo   repositories.CarRepositoryInterface
	orderRepo repositories.OrderRepositoryInterface
	userRepo  repositories.UserRepositoryInterface
	logger    *logger.Logger
}

func NewStatsService(carRepo repositories.CarRepositoryInterface, orderRepo repositories.OrderRepositoryInterface, userRepo repositories.UserRepositoryInterface, logger *logger.Logger) *StatsService {
	return &StatsService{
		carRepo:   carRepo,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger.WithComponent("stats_service"),
	}
}

// GetDashboard collects the admin dashboard aggregates in one pass
func (s *StatsService) GetDashboard() (*Dashboard, error) {
	s.logger.Debug("Building dashboard")

	totalCars, availableCars, err := s.carRepo.Counts()
	if err != nil {
		return nil, err
	}

	totalOrders, err := s.orderRepo.CountByStatus("")
	if err != nil {
		return nil, err
	}
	pendingOrders, err := s.orderRepo.CountByStatus(models.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	completedOrders, err := s.orderRepo.CountByStatus(models.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}

	recentOrders, err := s.orderRepo.Recent(dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	recentCars, err := s.carRepo.Recent(dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.OrderSummary, 0, len(recentOrders))
	for _, order := range recentOrders {
		car, err := s.carRepo.GetByID(order.CarID)
		if err != nil {
			car = nil
		}
		summaries = append(summaries, order.Summary(car))
	}

	return &Dashboard{
		Stats: DashboardStats{
			TotalCars:       totalCars,
			AvailableCars:   availableCars,
			TotalOrders:     totalOrders,
			PendingOrders:   pendingOrders,
			CompletedOrders: completedOrders,
			TotalUsers:      totalUsers,
		},
		RecentOrders: summaries,
		RecentCars:   recentCars,
	}, nil
}
