package market

import "github.com/shopspring/decimal"

// RoundTo rounds half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	f, _ := decimal.NewFromFloat(v).Round(int32(places)).Float64()
	return f
}

// TruncateTo cuts toward zero at the given number of decimal places. Sizing
// uses it so a position is never rounded up past the risk budget.
func TruncateTo(v float64, places int) float64 {
	f, _ := decimal.NewFromFloat(v).Truncate(int32(places)).Float64()
	return f
}
