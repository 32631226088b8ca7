package service

import (
	"fmt"
	"testing"
	"time"

	"autolot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carReq() CarRequest {
	return CarRequest{
		Make:         "Honda",
		Model:        "Civic",
		Year:         2016,
		Price:        decimal.NewFromInt(1800),
		Mileage:      60000,
		FuelType:     models.FuelGasoline,
		Transmission: models.TransmissionManual,
		Description:  "Runs great",
		Images:       []string{"/uploads/civic.jpg"},
		Features:     []string{"Backup camera"},
	}
}

func TestCreateCarStartsAvailable(t *testing.T) {
	_, svc, store, _ := newOrderFixture()

	car, err := svc.CreateCar(carReq())
	require.NoError(t, err)

	assert.True(t, car.IsAvailable)
	assert.NotEmpty(t, car.ID)
	assert.Contains(t, store.cars, car.ID)
}

func TestCreateCarValidation(t *testing.T) {
	_, svc, _, _ := newOrderFixture()

	cases := []struct {
		name  string
		field string
		edit  func(*CarRequest)
	}{
		{"missing make", "make", func(r *CarRequest) { r.Make = "  " }},
		{"year too old", "year", func(r *CarRequest) { r.Year = 1899 }},
		{"year in future", "year", func(r *CarRequest) { r.Year = time.Now().Year() + 2 }},
		{"zero price", "price", func(r *CarRequest) { r.Price = decimal.Zero }},
		{"price over cap", "price", func(r *CarRequest) { r.Price = decimal.NewFromInt(3001) }},
		{"negative mileage", "mileage", func(r *CarRequest) { r.Mileage = -1 }},
		{"bad fuel type", "fuel_type", func(r *CarRequest) { r.FuelType = "steam" }},
		{"bad transmission", "transmission", func(r *CarRequest) { r.Transmission = "tiptronic" }},
		{"no images", "images", func(r *CarRequest) { r.Images = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := carReq()
			tc.edit(&req)

			_, err := svc.CreateCar(req)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)

			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			assert.True(t, found, "expected a complaint about %q, got %v", tc.field, verr.Fields)
		})
	}
}

func TestCreateCarAcceptsPriceCapBoundary(t *testing.T) {
	_, svc, _, _ := newOrderFixture()

	req := carReq()
	req.Price = decimal.NewFromInt(3000)

	_, err := svc.CreateCar(req)
	assert.NoError(t, err)
}

func TestUpdateCarUnknownID(t *testing.T) {
	_, svc, _, _ := newOrderFixture()

	_, err := svc.UpdateCar("missing", carReq())
	assert.ErrorIs(t, err, models.ErrCarNotFound)
}

func TestDeleteCarBlockedByActiveOrder(t *testing.T) {
	orderSvc, carSvc, store, _ := newOrderFixture()
	store.cars["car-1"] = testCar("car-1", 1500)

	order, err := orderSvc.CreateOrder(createReq("car-1"))
	require.NoError(t, err)

	err = carSvc.DeleteCar("car-1")
	assert.ErrorIs(t, err, models.ErrCarReserved)

	// Terminal orders stop blocking deletion
	_, err = orderSvc.CancelOrder(order.ID, &models.Identity{IsAdmin: true})
	require.NoError(t, err)

	assert.NoError(t, carSvc.DeleteCar("car-1"))
}

func TestSetAvailabilityIsIdempotent(t *testing.T) {
	_, svc, store, _ := newOrderFixture()
	store.cars["car-1"] = testCar("car-1", 1500)

	car, err := svc.SetAvailability("car-1", false)
	require.NoError(t, err)
	assert.False(t, car.IsAvailable)

	car, err = svc.SetAvailability("car-1", false)
	require.NoError(t, err)
	assert.False(t, car.IsAvailable)
}

func TestSearchCarsPagination(t *testing.T) {
	_, svc, store, _ := newOrderFixture()
	for i := 0; i < CarsPerPage+3; i++ {
		id := fmt.Sprintf("car-%d", i)
		store.cars[id] = testCar(id, 1000)
	}

	page, err := svc.SearchCars(models.CarFilters{}, 1)
	require.NoError(t, err)
	assert.Len(t, page.Cars, CarsPerPage)
	assert.Equal(t, CarsPerPage+3, page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	page, err = svc.SearchCars(models.CarFilters{}, 2)
	require.NoError(t, err)
	assert.Len(t, page.Cars, 3)
}

func TestGetCarIncludesSimilar(t *testing.T) {
	_, svc, store, _ := newOrderFixture()
	store.cars["car-1"] = testCar("car-1", 1500)
	store.cars["car-2"] = testCar("car-2", 1400)

	detail, err := svc.GetCar("car-1")
	require.NoError(t, err)
	assert.Equal(t, "car-1", detail.Car.ID)
	require.Len(t, detail.Similar, 1)
	assert.Equal(t, "car-2", detail.Similar[0].ID)
}
