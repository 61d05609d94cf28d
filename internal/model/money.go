package model

import "fmt"

// Money — денежная сумма в медяках (copper), наименьшая единица валюты.
// Все расчёты в целых числах: float для денег запрещён, иначе ранжирование
// по прибыли поплывёт на ошибках округления.
//
// Rounding policy: cost divisions round up, revenue deductions round down,
// so the engine never overstates profit.
type Money int64

// Trading post denominations.
const (
	CopperPerSilver Money = 100
	CopperPerGold   Money = 10000
)

// FromCopper wraps a raw copper amount.
func FromCopper(c int64) Money {
	return Money(c)
}

// Copper returns the raw copper value.
func (m Money) Copper() int64 {
	return int64(m)
}

// Mul multiplies by a quantity.
func (m Money) Mul(n int64) Money {
	return m * Money(n)
}

// DivCeil divides by n rounding up. Used for craft costs: a recipe producing
// n outputs at total cost m must not report a unit cost below the true one.
func (m Money) DivCeil(n int64) Money {
	if n <= 0 {
		panic(fmt.Sprintf("money: DivCeil by %d", n))
	}
	return (m + Money(n) - 1) / Money(n)
}

// DivFloor divides by n rounding down. Used for revenue-side divisions.
func (m Money) DivFloor(n int64) Money {
	if n <= 0 {
		panic(fmt.Sprintf("money: DivFloor by %d", n))
	}
	return m / Money(n)
}

// SaleRevenue returns what the seller actually receives after the trading
// post takes its cut, rounded down.
func (m Money) SaleRevenue(feePct int64) Money {
	if feePct < 0 || feePct >= 100 {
		panic(fmt.Sprintf("money: fee %d%% out of range", feePct))
	}
	return m.Mul(100 - feePct).DivFloor(100)
}

// String renders gold.silver.copper, e.g. 123456 copper -> "12.34.56g".
func (m Money) String() string {
	c := int64(m)
	neg := ""
	if c < 0 {
		neg = "-"
		c = -c
	}
	gold := c / int64(CopperPerGold)
	silver := (c % int64(CopperPerGold)) / int64(CopperPerSilver)
	copper := c % int64(CopperPerSilver)
	return fmt.Sprintf("%s%d.%02d.%02dg", neg, gold, silver, copper)
}
