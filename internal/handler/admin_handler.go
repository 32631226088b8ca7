package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"autolot/internal/service"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/google/uuid"
)

const (
	maxUploadFiles    = 10
	maxUploadFileSize = 5 << 20
	maxUploadMemory   = 32 << 20
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// AdminHandler serves the admin endpoints. Routing guarantees every
// request reaching it carries an admin identity.
type AdminHandler struct {
	carService   service.CarServiceInterface
	orderService service.OrderServiceInterface
	authService  service.AuthServiceInterface
	statsService service.StatsServiceInterface
	uploadDir    string
	logger       *logger.Logger
}

func NewAdminHandler(carService service.CarServiceInterface, orderService service.OrderServiceInterface, authService service.AuthServiceInterface, statsService service.StatsServiceInterface, uploadDir string, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		carService:   carService,
		orderService: orderService,
		authService:  authService,
		statsService: statsService,
		uploadDir:    uploadDir,
		logger:       logger.WithComponent("admin_handler"),
	}
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	dashboard, err := h.statsService.GetDashboard()
	if err != nil {
		h.logger.Error("Failed to build dashboard", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, dashboard)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ListCars handles GET /api/v1/admin/cars
func (h *AdminHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	page, err := h.carService.ListCars(parsePage(r))
	if err != nil {
		h.logger.Error("Failed to list cars", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, page)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// CreateCar handles POST /api/v1/admin/cars
func (h *AdminHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.CarRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for create car", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	car, err := h.carService.CreateCar(req)
	if err != nil {
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusCreated, car)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// UpdateCar handles PUT /api/v1/admin/cars/{id}
func (h *AdminHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.CarRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for update car", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	id := r.PathValue("id")
	car, err := h.carService.UpdateCar(id, req)
	if err != nil {
		h.logger.Warn("Failed to update car", "car_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, car)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// DeleteCar handles DELETE /api/v1/admin/cars/{id}
func (h *AdminHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")
	if err := h.carService.DeleteCar(id); err != nil {
		h.logger.Warn("Failed to delete car", "car_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"car_id": id, "message": "Car deleted"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// SetCarAvailability handles PATCH /api/v1/admin/cars/{id}/availability
func (h *AdminHandler) SetCarAvailability(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for availability", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	id := r.PathValue("id")
	car, err := h.carService.SetAvailability(id, req.IsAvailable)
	if err != nil {
		h.logger.Warn("Failed to set availability", "car_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, car)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UploadImages handles POST /api/v1/admin/cars/images. Accepts up to
// maxUploadFiles image files in the "images" multipart field and
// responds with the stored URL paths.
func (h *AdminHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Warn("Invalid multipart form", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid upload")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "no images provided")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}
	if len(files) > maxUploadFiles {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("at most %d images per upload", maxUploadFiles))
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		url, err := h.saveUpload(header)
		if err != nil {
			h.logger.Warn("Failed to store upload", "filename", header.Filename, "error", err)
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
			reqCtx.StatusCode = http.StatusBadRequest
			h.logger.LogResponse(reqCtx)
			return
		}
		urls = append(urls, url)
	}

	h.logger.Info("Images uploaded", "count", len(urls))
	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{"images": urls})
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// ListOrders handles GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	status := models.OrderStatus(r.URL.Query().Get("status"))
	page, err := h.orderService.ListOrders(status, parsePage(r))
	if err != nil {
		h.logger.Warn("Failed to list orders", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	summaries := make([]models.OrderSummary, 0, len(page.Orders))
	for _, order := range page.Orders {
		summaries = append(summaries, h.orderService.Summary(order))
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"orders":     summaries,
		"pagination": page.Pagination,
	})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetOrder handles GET /api/v1/admin/orders/{id}
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")
	// The admin identity is guaranteed by routing, so authorization
	// inside the service always passes.
	order, err := h.orderService.GetOrder(id, &models.Identity{IsAdmin: true})
	if err != nil {
		h.logger.Warn("Failed to get order", "order_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UpdateOrderStatus handles PATCH /api/v1/admin/orders/{id}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for status update", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	id := r.PathValue("id")
	order, err := h.orderService.UpdateStatus(id, req.Status)
	if err != nil {
		h.logger.Warn("Failed to update order status", "order_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	page, err := h.authService.ListUsers(parsePage(r))
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, page)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")
	if err := h.authService.DeleteUser(id); err != nil {
		h.logger.Warn("Failed to delete user", "user_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"user_id": id, "message": "User deleted"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

func (h *AdminHandler) saveUpload(header *multipart.FileHeader) (string, error) {
	if header.Size > maxUploadFileSize {
		return "", fmt.Errorf("%s exceeds the 5MB size limit", header.Filename)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("%s has an unsupported file type", header.Filename)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %v", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare upload directory: %v", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	return "/uploads/" + name, nil
}
