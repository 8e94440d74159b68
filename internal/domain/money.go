package domain

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in hundredths of a dollar. All client-side
// arithmetic happens on Cents; floating point exists only at the wire and
// display boundaries.
type Cents int64

// CentsFromDollars converts a decimal dollar amount, rounding half away
// from zero.
func CentsFromDollars(d float64) Cents {
	return Cents(math.Round(d * 100))
}

func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}
