package handler

import (
	"net/http"
	"strconv"

	"autolot/internal/service"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/shopspring/decimal"
)

// CarHandler serves the public catalog endpoints
type CarHandler struct {
	carService service.CarServiceInterface
	logger     *logger.Logger
}

func NewCarHandler(carService service.CarServiceInterface, logger *logger.Logger) *CarHandler {
	return &CarHandler{
		carService: carService,
		logger:     logger.WithComponent("car_handler"),
	}
}

// SearchCars handles GET /api/v1/cars
func (h *CarHandler) SearchCars(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	filters := parseCarFilters(r)
	page, err := h.carService.SearchCars(filters, parsePage(r))
	if err != nil {
		h.logger.Error("Failed to search cars", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, page)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetCar handles GET /api/v1/cars/{id}
func (h *CarHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	id := r.PathValue("id")
	detail, err := h.carService.GetCar(id)
	if err != nil {
		h.logger.Warn("Failed to get car", "car_id", id, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, detail)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// FilterOptions handles GET /api/v1/cars/filters
func (h *CarHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	options, err := h.carService.FilterOptions()
	if err != nil {
		h.logger.Error("Failed to get filter options", "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, options)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// parseCarFilters reads catalog filters from the query string. Values
// that fail to parse are ignored rather than rejected.
func parseCarFilters(r *http.Request) models.CarFilters {
	query := r.URL.Query()

	filters := models.CarFilters{
		Make:         query.Get("make"),
		Model:        query.Get("model"),
		FuelType:     models.FuelType(query.Get("fuel_type")),
		Transmission: models.Transmission(query.Get("transmission")),
	}

	if year, err := strconv.Atoi(query.Get("year")); err == nil {
		filters.Year = year
	}
	if minPrice, err := decimal.NewFromString(query.Get("min_price")); err == nil {
		filters.MinPrice = &minPrice
	}
	if maxPrice, err := decimal.NewFromString(query.Get("max_price")); err == nil {
		filters.MaxPrice = &maxPrice
	}

	return filters
}
