package repositories

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"autolot/models"
	"autolot/pkg/database"
	"autolot/pkg/logger"

	"github.com/lib/pq"
)

// CarRepositoryInterface is the inventory store: durable storage for car
// records and the sole authority on is_available.
type CarRepositoryInterface interface {
	GetByID(id string) (*models.Car, error)
	GetAll(limit, offset int) ([]*models.Car, int, error)
	Recent(limit int) ([]*models.Car, error)
	Search(filters models.CarFilters, limit, offset int) ([]*models.Car, int, error)
	Similar(car *models.Car, limit int) ([]*models.Car, error)
	FilterOptions() (*models.FilterOptions, error)
	Create(car *models.Car) error
	Update(car *models.Car) error
	Delete(id string) error
	SetAvailability(id string, available bool) (*models.Car, error)
	Counts() (total, available int, err error)
}

type CarRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewCarRepository(logger *logger.Logger, db *database.DB) *CarRepository {
	return &CarRepository{
		logger: logger.WithComponent("car_repository"),
		db:     db,
	}
}

const carColumns = `id, make, model, year, price, mileage, fuel_type, transmission,
	description, images, features, is_available, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	car := &models.Car{}
	err := row.Scan(
		&car.ID,
		&car.Make,
		&car.Model,
		&car.Year,
		&car.Price,
		&car.Mileage,
		&car.FuelType,
		&car.Transmission,
		&car.Description,
		pq.Array(&car.Images),
		pq.Array(&car.Features),
		&car.IsAvailable,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return car, nil
}

// GetByID retrieves a single car by ID
func (r *CarRepository) GetByID(id string) (*models.Car, error) {
	r.logger.Debug("Retrieving car from database", "car_id", id)

	query := fmt.Sprintf(`SELECT %s FROM cars WHERE id = $1`, carColumns)

	car, err := scanCar(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Car not found", "car_id", id)
			return nil, models.ErrCarNotFound
		}
		r.logger.Error("Failed to retrieve car", "error", err, "car_id", id)
		return nil, fmt.Errorf("failed to retrieve car: %v", err)
	}

	return car, nil
}

// GetAll retrieves all cars newest first, with a total count for pagination
func (r *CarRepository) GetAll(limit, offset int) ([]*models.Car, int, error) {
	r.logger.Debug("Retrieving all cars from database", "limit", limit, "offset", offset)

	var total int
	if err := r.db.QueryRow(`SELECT count(*) FROM cars`).Scan(&total); err != nil {
		r.logger.Error("Failed to count cars", "error", err)
		return nil, 0, fmt.Errorf("failed to count cars: %v", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM cars ORDER BY created_at DESC LIMIT $1 OFFSET $2`, carColumns)

	cars, err := r.queryCars(query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return cars, total, nil
}

// Recent retrieves the most recently added cars
func (r *CarRepository) Recent(limit int) ([]*models.Car, error) {
	query := fmt.Sprintf(`SELECT %s FROM cars ORDER BY created_at DESC LIMIT $1`, carColumns)
	return r.queryCars(query, limit)
}

// buildSearchWhere assembles the WHERE clauses for the optional search
// filters. Only available cars are eligible.
func buildSearchWhere(filters models.CarFilters) ([]string, []interface{}) {
	clauses := []string{"is_available = TRUE"}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Make != "" {
		clauses = append(clauses, fmt.Sprintf("make ILIKE %s", arg("%"+filters.Make+"%")))
	}
	if filters.Model != "" {
		clauses = append(clauses, fmt.Sprintf("model ILIKE %s", arg("%"+filters.Model+"%")))
	}
	if filters.Year != 0 {
		clauses = append(clauses, fmt.Sprintf("year = %s", arg(filters.Year)))
	}
	if filters.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= %s", arg(*filters.MinPrice)))
	}
	if filters.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= %s", arg(*filters.MaxPrice)))
	}
	if filters.FuelType != "" {
		clauses = append(clauses, fmt.Sprintf("fuel_type = %s", arg(string(filters.FuelType))))
	}
	if filters.Transmission != "" {
		clauses = append(clauses, fmt.Sprintf("transmission = %s", arg(string(filters.Transmission))))
	}

	return clauses, args
}

// Search retrieves available cars matching the filters, newest first
func (r *CarRepository) Search(filters models.CarFilters, limit, offset int) ([]*models.Car, int, error) {
	r.logger.Debug("Searching cars", "filters", filters, "limit", limit, "offset", offset)

	clauses, args := buildSearchWhere(filters)
	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM cars WHERE %s`, where)
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count search results", "error", err)
		return nil, 0, fmt.Errorf("failed to count search results: %v", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM cars WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		carColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	cars, err := r.queryCars(query, args...)
	if err != nil {
		return nil, 0, err
	}

	r.logger.Info("Car search completed", "count", len(cars), "total", total)
	return cars, total, nil
}

// Similar retrieves other available cars with the same make or a price
// within $500 of the given car
func (r *CarRepository) Similar(car *models.Car, limit int) ([]*models.Car, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cars
		WHERE id <> $1 AND is_available = TRUE
		  AND (make = $2 OR (price BETWEEN $3 - 500 AND $3 + 500))
		ORDER BY created_at DESC
		LIMIT $4
	`, carColumns)

	return r.queryCars(query, car.ID, car.Make, car.Price, limit)
}

// FilterOptions retrieves the distinct filter values over available cars
func (r *CarRepository) FilterOptions() (*models.FilterOptions, error) {
	opts := &models.FilterOptions{}

	rows, err := r.db.Query(`
		SELECT make, year, fuel_type, transmission
		FROM cars
		WHERE is_available = TRUE
	`)
	if err != nil {
		r.logger.Error("Failed to query filter options", "error", err)
		return nil, fmt.Errorf("failed to query filter options: %v", err)
	}
	defer rows.Close()

	makes := map[string]bool{}
	years := map[int]bool{}
	fuelTypes := map[string]bool{}
	transmissions := map[string]bool{}

	for rows.Next() {
		var make, fuelType, transmission string
		var year int
		if err := rows.Scan(&make, &year, &fuelType, &transmission); err != nil {
			r.logger.Error("Failed to scan filter options row", "error", err)
			return nil, fmt.Errorf("failed to scan filter options row: %v", err)
		}
		makes[make] = true
		years[year] = true
		fuelTypes[fuelType] = true
		transmissions[transmission] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filter option rows: %v", err)
	}

	for m := range makes {
		opts.Makes = append(opts.Makes, m)
	}
	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	for f := range fuelTypes {
		opts.FuelTypes = append(opts.FuelTypes, f)
	}
	for t := range transmissions {
		opts.Transmissions = append(opts.Transmissions, t)
	}

	sort.Strings(opts.Makes)
	sort.Strings(opts.FuelTypes)
	sort.Strings(opts.Transmissions)
	// Latest years first
	sort.Sort(sort.Reverse(sort.IntSlice(opts.Years)))

	return opts, nil
}

// Create inserts a new car record
func (r *CarRepository) Create(car *models.Car) error {
	r.logger.Debug("Adding new car to database", "make", car.Make, "model", car.Model)

	query := `
		INSERT INTO cars (id, make, model, year, price, mileage, fuel_type, transmission,
			description, images, features, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(query,
		car.ID, car.Make, car.Model, car.Year, car.Price, car.Mileage,
		string(car.FuelType), string(car.Transmission), car.Description,
		pq.Array(car.Images), pq.Array(car.Features), car.IsAvailable,
		car.CreatedAt, car.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add car", "error", err, "make", car.Make, "model", car.Model)
		return fmt.Errorf("failed to add car: %v", err)
	}

	r.logger.Info("Added new car", "car_id", car.ID, "title", car.Title())
	return nil
}

// Update rewrites the admin-editable fields of a car and refreshes
// updated_at. Availability is not touched here; that is the lifecycle
// manager's path.
func (r *CarRepository) Update(car *models.Car) error {
	r.logger.Debug("Updating car in database", "car_id", car.ID)

	query := `
		UPDATE cars
		SET make = $2, model = $3, year = $4, price = $5, mileage = $6,
			fuel_type = $7, transmission = $8, description = $9,
			images = $10, features = $11, updated_at = $12
		WHERE id = $1
	`

	car.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(query,
		car.ID, car.Make, car.Model, car.Year, car.Price, car.Mileage,
		string(car.FuelType), string(car.Transmission), car.Description,
		pq.Array(car.Images), pq.Array(car.Features), car.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update car", "error", err, "car_id", car.ID)
		return fmt.Errorf("failed to update car: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update non-existent car", "car_id", car.ID)
		return models.ErrCarNotFound
	}

	r.logger.Info("Updated car", "car_id", car.ID, "title", car.Title())
	return nil
}

// Delete removes a car unless an in-flight order (pending, confirmed or
// processing) still references it. The guard and the delete are one
// statement so no order can slip in between.
func (r *CarRepository) Delete(id string) error {
	r.logger.Debug("Deleting car from database", "car_id", id)

	query := `
		DELETE FROM cars
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM orders
			WHERE orders.car_id = cars.id
			  AND orders.status IN ('pending', 'confirmed', 'processing')
		  )
	`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Error("Failed to delete car", "error", err, "car_id", id)
		return fmt.Errorf("failed to delete car: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM cars WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check car existence: %v", err)
		}
		if !exists {
			r.logger.Warn("Attempted to delete non-existent car", "car_id", id)
			return models.ErrCarNotFound
		}
		r.logger.Warn("Attempted to delete car with order in progress", "car_id", id)
		return models.ErrCarReserved
	}

	r.logger.Info("Deleted car", "car_id", id)
	return nil
}

// SetAvailability sets the availability flag. Idempotent: setting the
// current value is a no-op write that still refreshes updated_at.
func (r *CarRepository) SetAvailability(id string, available bool) (*models.Car, error) {
	r.logger.Debug("Setting car availability", "car_id", id, "available", available)

	query := fmt.Sprintf(`
		UPDATE cars
		SET is_available = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, carColumns)

	car, err := scanCar(r.db.QueryRow(query, id, available, time.Now().UTC()))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Car not found for availability update", "car_id", id)
			return nil, models.ErrCarNotFound
		}
		r.logger.Error("Failed to set car availability", "error", err, "car_id", id)
		return nil, fmt.Errorf("failed to set car availability: %v", err)
	}

	r.logger.Info("Car availability updated", "car_id", id, "available", available)
	return car, nil
}

// Counts returns the total and available car counts for the dashboard
func (r *CarRepository) Counts() (int, int, error) {
	var total, available int
	err := r.db.QueryRow(`
		SELECT count(*), count(*) FILTER (WHERE is_available = TRUE)
		FROM cars
	`).Scan(&total, &available)
	if err != nil {
		r.logger.Error("Failed to count cars", "error", err)
		return 0, 0, fmt.Errorf("failed to count cars: %v", err)
	}
	return total, available, nil
}

func (r *CarRepository) queryCars(query string, args ...interface{}) ([]*models.Car, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query cars", "error", err)
		return nil, fmt.Errorf("failed to query cars: %v", err)
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			r.logger.Error("Failed to scan car row", "error", err)
			return nil, fmt.Errorf("failed to scan car row: %v", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating car rows", "error", err)
		return nil, fmt.Errorf("error iterating car rows: %v", err)
	}

	return cars, nil
}
