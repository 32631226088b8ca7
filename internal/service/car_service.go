package service

import (
	"fmt"
	"strings"
	"time"

	"autolot/internal/repositories"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// CarsPerPage is the public catalog page size
	CarsPerPage = 12
	// AdminCarsPerPage is the admin inventory listing page size
	AdminCarsPerPage = 10
	// SimilarCarsLimit caps the similar-cars block on a car page
	SimilarCarsLimit = 4
)

// CarRequest carries the admin-editable fields of a car
type CarRequest struct {
	Make         string              `json:"make"`
	Model        string              `json:"model"`
	Year         int                 `json:"year"`
	Price        decimal.Decimal     `json:"price"`
	Mileage      int                 `json:"mileage"`
	FuelType     models.FuelType     `json:"fuel_type"`
	Transmission models.Transmission `json:"transmission"`
	Description  string              `json:"description"`
	Images       []string            `json:"images"`
	Features     []string            `json:"features"`
}

// CarPage is one page of a car listing
type CarPage struct {
	Cars       []*models.Car     `json:"cars"`
	Pagination models.Pagination `json:"pagination"`
}

// CarDetail is a single car together with up to SimilarCarsLimit
// comparable offers
type CarDetail struct {
	Car     *models.Car   `json:"car"`
	Similar []*models.Car `json:"similar_cars"`
}

type CarServiceInterface interface {
	SearchCars(filters models.CarFilters, page int) (*CarPage, error)
	GetCar(id string) (*CarDetail, error)
	FilterOptions() (*models.FilterOptions, error)
	ListCars(page int) (*CarPage, error)
	RecentCars(limit int) ([]*models.Car, error)
	CreateCar(req CarRequest) (*models.Car, error)
	UpdateCar(id string, req CarRequest) (*models.Car, error)
	DeleteCar(id string) error
	SetAvailability(id string, available bool) (*models.Car, error)
}

type CarService struct {
	carRepo repositories.CarRepositoryInterface
	logger  *logger.Logger
}

func NewCarService(carRepo repositories.CarRepositoryInterface, logger *logger.Logger) *CarService {
	return &CarService{
		carRepo: carRepo,
		logger:  logger.WithComponent("car_service"),
	}
}

// SearchCars retrieves one catalog page matching the given filters
func (s *CarService) SearchCars(filters models.CarFilters, page int) (*CarPage, error) {
	if page < 1 {
		page = 1
	}

	cars, total, err := s.carRepo.Search(filters, CarsPerPage, (page-1)*CarsPerPage)
	if err != nil {
		return nil, err
	}

	return &CarPage{
		Cars:       cars,
		Pagination: models.NewPagination(page, CarsPerPage, total),
	}, nil
}

// GetCar retrieves a car and comparable available offers. A failure to
// load the similar block degrades to an empty list rather than failing
// the whole page.
func (s *CarService) GetCar(id string) (*CarDetail, error) {
	car, err := s.carRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	similar, err := s.carRepo.Similar(car, SimilarCarsLimit)
	if err != nil {
		s.logger.Warn("Failed to load similar cars", "car_id", id, "error", err)
		similar = []*models.Car{}
	}

	return &CarDetail{Car: car, Similar: similar}, nil
}

// FilterOptions retrieves the distinct values the catalog filters offer
func (s *CarService) FilterOptions() (*models.FilterOptions, error) {
	return s.carRepo.FilterOptions()
}

// ListCars retrieves one page of the full inventory, available or not
func (s *CarService) ListCars(page int) (*CarPage, error) {
	if page < 1 {
		page = 1
	}

	cars, total, err := s.carRepo.GetAll(AdminCarsPerPage, (page-1)*AdminCarsPerPage)
	if err != nil {
		return nil, err
	}

	return &CarPage{
		Cars:       cars,
		Pagination: models.NewPagination(page, AdminCarsPerPage, total),
	}, nil
}

// RecentCars retrieves the most recently added cars
func (s *CarService) RecentCars(limit int) ([]*models.Car, error) {
	if limit < 1 {
		limit = 10
	}
	return s.carRepo.Recent(limit)
}

// CreateCar adds a new car to the inventory. New cars start available.
func (s *CarService) CreateCar(req CarRequest) (*models.Car, error) {
	s.logger.Info("Creating car", "make", req.Make, "model", req.Model, "year", req.Year)

	if err := validateCarRequest(req); err != nil {
		s.logger.Warn("Create failed: invalid data", "error", err)
		return nil, err
	}

	now := time.Now().UTC()
	car := &models.Car{
		ID:           uuid.NewString(),
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Description:  strings.TrimSpace(req.Description),
		Images:       req.Images,
		Features:     req.Features,
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.carRepo.Create(car); err != nil {
		return nil, err
	}

	s.logger.Info("Car created", "car_id", car.ID, "title", car.Title())
	return car, nil
}

// UpdateCar replaces the editable fields of an existing car. The price
// of already placed orders is unaffected; each order keeps the amount
// snapshotted when it was created.
func (s *CarService) UpdateCar(id string, req CarRequest) (*models.Car, error) {
	s.logger.Info("Updating car", "car_id", id)

	if err := validateCarRequest(req); err != nil {
		s.logger.Warn("Update failed: invalid data", "car_id", id, "error", err)
		return nil, err
	}

	car, err := s.carRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	car.Make = strings.TrimSpace(req.Make)
	car.Model = strings.TrimSpace(req.Model)
	car.Year = req.Year
	car.Price = req.Price
	car.Mileage = req.Mileage
	car.FuelType = req.FuelType
	car.Transmission = req.Transmission
	car.Description = strings.TrimSpace(req.Description)
	car.Images = req.Images
	car.Features = req.Features

	if err := s.carRepo.Update(car); err != nil {
		return nil, err
	}

	s.logger.Info("Car updated", "car_id", id)
	return car, nil
}

// DeleteCar removes a car that has no order still in flight
func (s *CarService) DeleteCar(id string) error {
	s.logger.Info("Deleting car", "car_id", id)

	if err := s.carRepo.Delete(id); err != nil {
		s.logger.Warn("Delete failed", "car_id", id, "error", err)
		return err
	}

	s.logger.Info("Car deleted", "car_id", id)
	return nil
}

// SetAvailability flips the availability flag directly. Setting the
// current value is a no-op that still succeeds.
func (s *CarService) SetAvailability(id string, available bool) (*models.Car, error) {
	s.logger.Info("Setting car availability", "car_id", id, "available", available)
	return s.carRepo.SetAvailability(id, available)
}

func validateCarRequest(req CarRequest) error {
	verr := &models.ValidationError{}

	if strings.TrimSpace(req.Make) == "" {
		verr.Add("make", "make is required")
	} else if len(req.Make) > models.MaxMakeLength {
		verr.Add("make", fmt.Sprintf("make cannot exceed %d characters", models.MaxMakeLength))
	}

	if strings.TrimSpace(req.Model) == "" {
		verr.Add("model", "model is required")
	} else if len(req.Model) > models.MaxModelLength {
		verr.Add("model", fmt.Sprintf("model cannot exceed %d characters", models.MaxModelLength))
	}

	maxYear := time.Now().Year() + 1
	if req.Year < models.MinCarYear || req.Year > maxYear {
		verr.Add("year", fmt.Sprintf("year must be between %d and %d", models.MinCarYear, maxYear))
	}

	if req.Price.LessThanOrEqual(decimal.Zero) {
		verr.Add("price", "price must be greater than zero")
	} else if req.Price.GreaterThan(models.MaxCarPrice) {
		verr.Add("price", fmt.Sprintf("price cannot exceed $%d", models.MaxCarPriceDollars))
	}

	if req.Mileage < 0 {
		verr.Add("mileage", "mileage cannot be negative")
	}

	if !req.FuelType.Valid() {
		verr.Add("fuel_type", "please select a valid fuel type")
	}

	if !req.Transmission.Valid() {
		verr.Add("transmission", "please select a valid transmission")
	}

	if len(req.Description) > models.MaxDescriptionLength {
		verr.Add("description", fmt.Sprintf("description cannot exceed %d characters", models.MaxDescriptionLength))
	}

	if len(req.Images) == 0 {
		verr.Add("images", "at least one image is required")
	}

	return verr.Err()
}
