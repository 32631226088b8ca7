package service

import (
	"errors"
	"strings"
	"time"

	"autolot/internal/repositories"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/google/uuid"
)

// OrdersPerPage is the admin order listing page size
const OrdersPerPage = 10

// CreateOrderRequest carries everything needed to place an order.
// UserID comes from the session, never from the request body.
type CreateOrderRequest struct {
	CarID         string               `json:"car_id"`
	CustomerInfo  models.CustomerInfo  `json:"customer_info"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes"`
	UserID        string               `json:"-"`
}

// OrderPage is one page of an order listing
type OrderPage struct {
	Orders     []*models.Order   `json:"orders"`
	Pagination models.Pagination `json:"pagination"`
}

// OrderNotifier receives lifecycle events after the transactional part of
// an operation has committed. Implementations are fire-and-forget: they
// must never block the caller or surface failures back to it.
type OrderNotifier interface {
	OrderCreated(order *models.Order, car *models.Car)
	OrderCancelled(order *models.Order, car *models.Car)
}

// OrderServiceInterface is the order lifecycle manager: it enforces the
// order state machine and keeps car availability consistent with it.
type OrderServiceInterface interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	GetOrder(id string, ident *models.Identity) (*models.Order, error)
	CancelOrder(id string, ident *models.Identity) (*models.Order, error)
	UpdateStatus(id string, newStatus models.OrderStatus) (*models.Order, error)
	ListOrders(status models.OrderStatus, page int) (*OrderPage, error)
	RecentOrders(limit int) ([]*models.Order, error)
	Summary(order *models.Order) models.OrderSummary
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	carRepo   repositories.CarRepositoryInterface
	notifier  OrderNotifier
	logger    *logger.Logger
}

func NewOrderService(orderRepo repositories.OrderRepositoryInterface, carRepo repositories.CarRepositoryInterface, notifier OrderNotifier, logger *logger.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		carRepo:   carRepo,
		notifier:  notifier,
		logger:    logger.WithComponent("order_service"),
	}
}

// CreateOrder places a new order for a car. The order insert and the
// availability flip are applied atomically by the repository; the price
// snapshot is taken at the same instant. Notifications are dispatched
// only after the transaction commits and never affect the outcome.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	s.logger.Info("Creating new order", "car_id", req.CarID, "customer", req.CustomerInfo.Name)

	if err := s.validateCreateOrder(req); err != nil {
		s.logger.Warn("Create failed: invalid data", "error", err)
		return nil, err
	}

	car, err := s.carRepo.GetByID(req.CarID)
	if err != nil {
		s.logger.Warn("Create failed: car lookup", "car_id", req.CarID, "error", err)
		return nil, err
	}

	// Friendly early rejection; the repository re-checks atomically.
	if !car.IsAvailable {
		s.logger.Warn("Create failed: car unavailable", "car_id", req.CarID)
		return nil, models.ErrCarUnavailable
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:     uuid.NewString(),
		CarID:  req.CarID,
		UserID: req.UserID,
		CustomerInfo: models.CustomerInfo{
			Name:    strings.TrimSpace(req.CustomerInfo.Name),
			Email:   strings.ToLower(strings.TrimSpace(req.CustomerInfo.Email)),
			Phone:   strings.TrimSpace(req.CustomerInfo.Phone),
			Address: strings.TrimSpace(req.CustomerInfo.Address),
		},
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created", "order_id", order.ID, "car_id", order.CarID,
		"total_amount", order.TotalAmount, "guest", order.IsGuest())

	s.notifier.OrderCreated(order, car)

	return order, nil
}

// GetOrder retrieves an order for the given caller. Readable by the user
// who placed it or an admin; guest orders only through the admin path.
func (s *OrderService) GetOrder(id string, ident *models.Identity) (*models.Order, error) {
	if id == "" {
		return nil, models.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := authorizeOrderAccess(order, ident); err != nil {
		s.logger.Warn("Order access denied", "order_id", id)
		return nil, err
	}

	return order, nil
}

// CancelOrder cancels an order on behalf of its owner or an admin.
// Cancellation releases the car back to available and triggers the
// cancellation fan-out.
func (s *OrderService) CancelOrder(id string, ident *models.Identity) (*models.Order, error) {
	s.logger.Info("Cancelling order", "order_id", id)

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := authorizeOrderAccess(order, ident); err != nil {
		s.logger.Warn("Order cancellation denied", "order_id", id)
		return nil, err
	}

	if !order.Status.Cancellable() {
		s.logger.Warn("Cannot cancel order", "order_id", id, "status", order.Status)
		return nil, models.ErrInvalidTransition
	}

	updated, err := s.orderRepo.UpdateStatus(id, order.Status, models.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled", "order_id", id, "car_id", updated.CarID)

	s.notifier.OrderCancelled(updated, s.lookupCar(updated.CarID))

	return updated, nil
}

// UpdateStatus applies an admin-driven status transition. Transitions
// outside the state machine fail with ErrInvalidTransition and change
// nothing.
func (s *OrderService) UpdateStatus(id string, newStatus models.OrderStatus) (*models.Order, error) {
	s.logger.Info("Updating order status", "order_id", id, "new_status", newStatus)

	if !newStatus.Valid() {
		s.logger.Warn("Unknown order status", "order_id", id, "status", newStatus)
		return nil, models.ErrInvalidTransition
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		s.logger.Warn("Illegal status transition", "order_id", id,
			"from", order.Status, "to", newStatus)
		return nil, models.ErrInvalidTransition
	}

	updated, err := s.orderRepo.UpdateStatus(id, order.Status, newStatus)
	if err != nil {
		return nil, err
	}

	if newStatus == models.OrderStatusCancelled {
		s.notifier.OrderCancelled(updated, s.lookupCar(updated.CarID))
	}

	return updated, nil
}

// ListOrders retrieves one page of orders, optionally filtered by status
func (s *OrderService) ListOrders(status models.OrderStatus, page int) (*OrderPage, error) {
	if status != "" && !status.Valid() {
		verr := &models.ValidationError{}
		verr.Add("status", "unknown order status")
		return nil, verr
	}

	if page < 1 {
		page = 1
	}

	orders, total, err := s.orderRepo.List(status, OrdersPerPage, (page-1)*OrdersPerPage)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:     orders,
		Pagination: models.NewPagination(page, OrdersPerPage, total),
	}, nil
}

// RecentOrders retrieves the most recently created orders
func (s *OrderService) RecentOrders(limit int) ([]*models.Order, error) {
	if limit < 1 {
		limit = 10
	}
	return s.orderRepo.Recent(limit)
}

// Summary projects an order into its read-side summary, populating the
// car title when the car still exists
func (s *OrderService) Summary(order *models.Order) models.OrderSummary {
	return order.Summary(s.lookupCar(order.CarID))
}

// lookupCar fetches the car for notification/summary purposes. A missing
// car is a legal state (hard-deleted after the order) and maps to nil.
func (s *OrderService) lookupCar(carID string) *models.Car {
	car, err := s.carRepo.GetByID(carID)
	if err != nil {
		if !errors.Is(err, models.ErrCarNotFound) {
			s.logger.Warn("Failed to look up car", "car_id", carID, "error", err)
		}
		return nil
	}
	return car
}

// authorizeOrderAccess implements the read/cancel policy: the placing
// user or an admin. Guest orders have no owner, so only admins qualify.
func authorizeOrderAccess(order *models.Order, ident *models.Identity) error {
	if ident != nil && ident.IsAdmin {
		return nil
	}
	if ident != nil && !order.IsGuest() && ident.UserID == order.UserID {
		return nil
	}
	return models.ErrAccessDenied
}

func (s *OrderService) validateCreateOrder(req CreateOrderRequest) error {
	verr := &models.ValidationError{}

	if req.CarID == "" {
		verr.Add("car_id", "car id is required")
	}

	if err := req.CustomerInfo.Validate(); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			verr.Fields = append(verr.Fields, ve.Fields...)
		} else {
			return err
		}
	}

	if !req.PaymentMethod.Valid() {
		verr.Add("payment_method", "please select a valid payment method")
	}

	if len(req.Notes) > models.MaxOrderNotesLength {
		verr.Add("notes", "notes cannot exceed 1000 characters")
	}

	return verr.Err()
}
