package repositories

import (
	"testing"

	"autolot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchWhereNoFilters(t *testing.T) {
	clauses, args := buildSearchWhere(models.CarFilters{})

	assert.Equal(t, []string{"is_available = TRUE"}, clauses)
	assert.Empty(t, args)
}

func TestBuildSearchWhereAllFilters(t *testing.T) {
	minPrice := decimal.NewFromInt(500)
	maxPrice := decimal.NewFromInt(2500)

	clauses, args := buildSearchWhere(models.CarFilters{
		Make:         "Toyota",
		Model:        "Camry",
		Year:         2018,
		MinPrice:     &minPrice,
		MaxPrice:     &maxPrice,
		FuelType:     models.FuelGasoline,
		Transmission: models.TransmissionAutomatic,
	})

	require.Equal(t, []string{
		"is_available = TRUE",
		"make ILIKE $1",
		"model ILIKE $2",
		"year = $3",
		"price >= $4",
		"price <= $5",
		"fuel_type = $6",
		"transmission = $7",
	}, clauses)

	require.Len(t, args, 7)
	assert.Equal(t, "%Toyota%", args[0])
	assert.Equal(t, "%Camry%", args[1])
	assert.Equal(t, 2018, args[2])
	assert.Equal(t, "Gasoline", args[5])
	assert.Equal(t, "Automatic", args[6])
}

func TestBuildSearchWherePlaceholdersStayDense(t *testing.T) {
	// Skipping filters must not leave gaps in the placeholder numbering
	maxPrice := decimal.NewFromInt(3000)
	clauses, args := buildSearchWhere(models.CarFilters{
		Model:    "Civic",
		MaxPrice: &maxPrice,
	})

	assert.Equal(t, []string{
		"is_available = TRUE",
		"model ILIKE $1",
		"price <= $2",
	}, clauses)
	assert.Len(t, args, 2)
}
