// Package money handles rupee amounts as integer paise to avoid float
// arithmetic on financial values.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// INR is the only currency the advisor deals in.
const INR = "INR"

// PaiseFromFloat converts a rupee amount (as produced by JSON decoding)
// to integer paise, rounding half away from zero.
func PaiseFromFloat(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Rupees converts paise back to a rupee float for chart values.
func Rupees(paise int64) float64 {
	f, _ := decimal.NewFromInt(paise).Div(decimal.NewFromInt(100)).Float64()
	return f
}

// Display formats paise as a rupee string, e.g. "₹1,234.50".
func Display(paise int64) string {
	return money.New(paise, INR).Display()
}

// Sum adds a series of paise amounts.
func Sum(amounts ...int64) int64 {
	var total int64
	for _, a := range amounts {
		total += a
	}
	return total
}
