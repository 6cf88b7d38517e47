package models

import "fmt"

// Money is an amount in minor units (pence). Totals are never computed in floating point.
type Money int64

func Pounds(p int64) Money {
	return Money(p * 100)
}

func (m Money) Times(n int) Money {
	return m * Money(n)
}

// String renders the amount the way it appears in customer messages, e.g. £175.00.
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s£%d.%02d", sign, int64(m)/100, int64(m)%100)
}
