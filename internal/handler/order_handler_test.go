package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"autolot/internal/service"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderService struct {
	createFn func(service.CreateOrderRequest) (*models.Order, error)
	getFn    func(string, *models.Identity) (*models.Order, error)
	cancelFn func(string, *models.Identity) (*models.Order, error)
}

func (s *stubOrderService) CreateOrder(req service.CreateOrderRequest) (*models.Order, error) {
	return s.createFn(req)
}

func (s *stubOrderService) GetOrder(id string, ident *models.Identity) (*models.Order, error) {
	return s.getFn(id, ident)
}

func (s *stubOrderService) CancelOrder(id string, ident *models.Identity) (*models.Order, error) {
	return s.cancelFn(id, ident)
}

func (s *stubOrderService) UpdateStatus(string, models.OrderStatus) (*models.Order, error) {
	panic("not expected")
}

func (s *stubOrderService) ListOrders(models.OrderStatus, int) (*service.OrderPage, error) {
	panic("not expected")
}

func (s *stubOrderService) RecentOrders(int) ([]*models.Order, error) {
	panic("not expected")
}

func (s *stubOrderService) Summary(*models.Order) models.OrderSummary {
	panic("not expected")
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
}

func orderRoutes(svc service.OrderServiceInterface) http.Handler {
	h := NewOrderHandler(svc, quietLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", h.CancelOrder)
	return mux
}

func TestCreateOrderEndpoint(t *testing.T) {
	var gotReq service.CreateOrderRequest
	svc := &stubOrderService{
		createFn: func(req service.CreateOrderRequest) (*models.Order, error) {
			gotReq = req
			return &models.Order{ID: "ord-1", Status: models.OrderStatusPending}, nil
		},
	}

	body := `{
		"car_id": "car-1",
		"customer_info": {
			"name": "Jordan Blake",
			"email": "jordan@example.com",
			"phone": "+1 555 010 2030",
			"address": "12 Elm Street"
		},
		"payment_method": "Zelle"
	}`

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/orders", newBody(body))
	orderRoutes(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "car-1", gotReq.CarID)
	assert.Equal(t, models.PaymentZelle, gotReq.PaymentMethod)
	// Anonymous request stays a guest order
	assert.Empty(t, gotReq.UserID)

	var resp models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ord-1", resp.ID)
}

func TestCreateOrderEndpointBadBody(t *testing.T) {
	svc := &stubOrderService{
		createFn: func(service.CreateOrderRequest) (*models.Order, error) {
			t.Fatal("service should not be reached")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/orders", newBody(`{"car_id": }`))
	orderRoutes(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderEndpointConflict(t *testing.T) {
	svc := &stubOrderService{
		createFn: func(service.CreateOrderRequest) (*models.Order, error) {
			return nil, models.ErrCarUnavailable
		},
	}

	body := `{"car_id": "car-1", "customer_info": {"name": "A", "email": "a@b.c", "phone": "1", "address": "x"}, "payment_method": "Zelle"}`
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/orders", newBody(body))
	orderRoutes(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(id string, ident *models.Identity) (*models.Order, error) {
			if id == "ord-1" {
				return &models.Order{ID: "ord-1"}, nil
			}
			return nil, models.ErrOrderNotFound
		},
	}

	rec := httptest.NewRecorder()
	orderRoutes(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	orderRoutes(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrderEndpointForbidden(t *testing.T) {
	svc := &stubOrderService{
		cancelFn: func(string, *models.Identity) (*models.Order, error) {
			return nil, models.ErrAccessDenied
		},
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/orders/ord-1/cancel", nil)
	orderRoutes(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
