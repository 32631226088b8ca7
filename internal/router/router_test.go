package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autolot/internal/handler"
	"autolot/internal/middleware"
	"autolot/internal/service"
	"autolot/internal/session"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCars struct{}

func (s *stubCars) GetCar(id string) (*service.CarDetail, error) {
	return &service.CarDetail{Car: &models.Car{ID: id, Make: "Toyota", Model: "Camry"}}, nil
}

func (s *stubCars) SearchCars(models.CarFilters, int) (*service.CarPage, error) {
	panic("not expected")
}

func (s *stubCars) FilterOptions() (*models.FilterOptions, error) { panic("not expected") }

func (s *stubCars) ListCars(int) (*service.CarPage, error) { panic("not expected") }

func (s *stubCars) RecentCars(int) ([]*models.Car, error) { panic("not expected") }

func (s *stubCars) CreateCar(service.CarRequest) (*models.Car, error) { panic("not expected") }

func (s *stubCars) UpdateCar(string, service.CarRequest) (*models.Car, error) {
	panic("not expected")
}

func (s *stubCars) DeleteCar(string) error { panic("not expected") }

func (s *stubCars) SetAvailability(string, bool) (*models.Car, error) { panic("not expected") }

type stubOrders struct{}

func (s *stubOrders) CreateOrder(service.CreateOrderRequest) (*models.Order, error) {
	panic("not expected")
}

func (s *stubOrders) GetOrder(string, *models.Identity) (*models.Order, error) {
	panic("not expected")
}

func (s *stubOrders) CancelOrder(string, *models.Identity) (*models.Order, error) {
	panic("not expected")
}

func (s *stubOrders) UpdateStatus(string, models.OrderStatus) (*models.Order, error) {
	panic("not expected")
}

func (s *stubOrders) ListOrders(models.OrderStatus, int) (*service.OrderPage, error) {
	panic("not expected")
}

func (s *stubOrders) RecentOrders(int) ([]*models.Order, error) { panic("not expected") }

func (s *stubOrders) Summary(*models.Order) models.OrderSummary { panic("not expected") }

type stubAuth struct{}

func (s *stubAuth) Register(service.RegisterRequest) (*models.User, error) { panic("not expected") }

func (s *stubAuth) Login(service.LoginRequest) (*models.User, error) { panic("not expected") }

func (s *stubAuth) GetUser(string) (*models.User, error) { panic("not expected") }

func (s *stubAuth) ListUsers(int) (*service.UserPage, error) { panic("not expected") }

func (s *stubAuth) DeleteUser(string) error { panic("not expected") }

func (s *stubAuth) UserCount() (int, error) { panic("not expected") }

type stubStats struct{}

func (s *stubStats) GetDashboard() (*service.Dashboard, error) { panic("not expected") }

func testRouter(t *testing.T, uploadDir string) (http.Handler, *session.Manager) {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
	sessions := session.NewManager("test-secret")

	cfg := Config{
		Cars:      handler.NewCarHandler(&stubCars{}, log),
		Orders:    handler.NewOrderHandler(&stubOrders{}, log),
		Auth:      handler.NewAuthHandler(&stubAuth{}, sessions, log),
		Admin:     handler.NewAdminHandler(&stubCars{}, &stubOrders{}, &stubAuth{}, &stubStats{}, uploadDir, log),
		UploadDir: uploadDir,
	}
	return middleware.WithIdentity(sessions)(New(cfg)), sessions
}

// adminRequest signs in an admin and stamps the session cookie onto req.
func adminRequest(t *testing.T, sessions *session.Manager, req *http.Request) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	seed := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, sessions.SignIn(rec, seed, models.Identity{UserID: "admin-1", Username: "admin", IsAdmin: true}))

	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestAdminCarDetailRoute(t *testing.T) {
	h, sessions := testRouter(t, t.TempDir())

	// Anonymous requests never reach the handler
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/cars/car-42", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := adminRequest(t, sessions, httptest.NewRequest(http.MethodGet, "/api/v1/admin/cars/car-42", nil))
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail service.CarDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	require.NotNil(t, detail.Car)
	assert.Equal(t, "car-42", detail.Car.ID)
}

func TestAdminUploadRoute(t *testing.T) {
	uploadDir := t.TempDir()
	h, sessions := testRouter(t, uploadDir)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("images", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a real png, close enough"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, adminRequest(t, sessions, req))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Images []string `json:"images"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Images, 1)
	assert.True(t, strings.HasPrefix(resp.Images[0], "/uploads/"))
}

func TestCurrentUserRouteRequiresSession(t *testing.T) {
	h, _ := testRouter(t, t.TempDir())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
