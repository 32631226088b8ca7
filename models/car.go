package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FuelType enumerates the accepted fuel types
type FuelType string

const (
	FuelGasoline FuelType = "Gasoline"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
	FuelOther    FuelType = "Other"
)

// Valid reports whether the fuel type is one of the enumerated values
func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelElectric, FuelHybrid, FuelOther:
		return true
	}
	return false
}

// Transmission enumerates the accepted transmission types
type Transmission string

const (
	TransmissionManual    Transmission = "Manual"
	TransmissionAutomatic Transmission = "Automatic"
	TransmissionCVT       Transmission = "CVT"
)

// Valid reports whether the transmission is one of the enumerated values
func (t Transmission) Valid() bool {
	switch t {
	case TransmissionManual, TransmissionAutomatic, TransmissionCVT:
		return true
	}
	return false
}

// Car field bounds
const (
	MinCarYear           = 1900
	MaxCarPriceDollars   = 3000
	MaxMakeLength        = 50
	MaxModelLength       = 50
	MaxDescriptionLength = 2000
)

// MaxCarPrice is the domain price ceiling enforced at creation
var MaxCarPrice = decimal.NewFromInt(MaxCarPriceDollars)

// Car is an inventory item. IsAvailable is owned by the inventory store:
// it is true iff no active (non-cancelled) order references the car.
type Car struct {
	ID           string          `json:"car_id" db:"id"`
	Make         string          `json:"make" db:"make"`
	Model        string          `json:"model" db:"model"`
	Year         int             `json:"year" db:"year"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Mileage      int             `json:"mileage" db:"mileage"`
	FuelType     FuelType        `json:"fuel_type" db:"fuel_type"`
	Transmission Transmission    `json:"transmission" db:"transmission"`
	Description  string          `json:"description" db:"description"`
	Images       []string        `json:"images" db:"images"`
	Features     []string        `json:"features" db:"features"`
	IsAvailable  bool            `json:"is_available" db:"is_available"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Title returns the display title, e.g. "2006 Toyota Corolla"
func (c *Car) Title() string {
	return fmt.Sprintf("%d %s %s", c.Year, c.Make, c.Model)
}

// FormattedPrice returns the price as a US dollar string
func (c *Car) FormattedPrice() string {
	return FormatAmount(c.Price)
}

// CarFilters holds the optional, independently combinable search filters.
// Zero values mean "no filter".
type CarFilters struct {
	Make         string           `json:"make,omitempty"`
	Model        string           `json:"model,omitempty"`
	Year         int              `json:"year,omitempty"`
	MinPrice     *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice     *decimal.Decimal `json:"max_price,omitempty"`
	FuelType     FuelType         `json:"fuel_type,omitempty"`
	Transmission Transmission     `json:"transmission,omitempty"`
}

// FilterOptions lists the distinct values present on available cars,
// used to populate the search form
type FilterOptions struct {
	Makes         []string `json:"makes"`
	Years         []int    `json:"years"`
	FuelTypes     []string `json:"fuel_types"`
	Transmissions []string `json:"transmissions"`
}
