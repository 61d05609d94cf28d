package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyDivCeil(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    Money
		n    int64
		want Money
	}{
		{"exact", 10, 2, 5},
		{"rounds up", 11, 2, 6},
		{"unit", 7, 1, 7},
		{"smaller than divisor", 1, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.DivCeil(tt.n))
		})
	}
}

func TestMoneySaleRevenueRoundsDown(t *testing.T) {
	t.Parallel()

	// The fee rounding direction is load-bearing: revenue rounds down so
	// profit is never overstated. 30 x 85% = 25.5 -> 25.
	assert.Equal(t, Money(25), Money(30).SaleRevenue(15))
	assert.Equal(t, Money(23), Money(28).SaleRevenue(15))
	assert.Equal(t, Money(85), Money(100).SaleRevenue(15))
	assert.Equal(t, Money(0), Money(1).SaleRevenue(15))
	assert.Equal(t, Money(30), Money(30).SaleRevenue(0))
}

func TestMoneyString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		copper int64
		want   string
	}{
		{0, "0.00.00g"},
		{56, "0.00.56g"},
		{123456, "12.34.56g"},
		{10000, "1.00.00g"},
		{-305, "-0.03.05g"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromCopper(tt.copper).String())
	}
}

func TestMoneyDivByZeroPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Money(10).DivCeil(0) })
	assert.Panics(t, func() { Money(10).DivFloor(-1) })
	assert.Panics(t, func() { Money(10).SaleRevenue(100) })
}
