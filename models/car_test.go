package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCarTitle(t *testing.T) {
	car := &Car{Make: "Honda", Model: "Civic", Year: 2016}
	assert.Equal(t, "2016 Honda Civic", car.Title())
}

func TestFuelTypeValid(t *testing.T) {
	assert.True(t, FuelGasoline.Valid())
	assert.True(t, FuelElectric.Valid())
	assert.False(t, FuelType("steam").Valid())
	assert.False(t, FuelType("").Valid())
}

func TestTransmissionValid(t *testing.T) {
	assert.True(t, TransmissionManual.Valid())
	assert.True(t, TransmissionCVT.Valid())
	assert.False(t, Transmission("tiptronic").Valid())
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.NewFromInt(0), "$0.00"},
		{decimal.NewFromInt(950), "$950.00"},
		{decimal.NewFromInt(1500), "$1,500.00"},
		{decimal.RequireFromString("2999.50"), "$2,999.50"},
		{decimal.NewFromInt(1234567), "$1,234,567.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.amount))
	}
}
