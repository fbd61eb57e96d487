package utils

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places reported for monetary values.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// SumDecimals adds the values; an empty slice sums to zero.
func SumDecimals(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MeanDecimal returns the arithmetic mean, or false for an empty slice.
func MeanDecimal(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	return SumDecimals(values).Div(decimal.NewFromInt(int64(len(values)))), true
}

// MedianDecimal returns the middle value, averaging the two middle values for
// even-sized input. The slice is not modified.
func MedianDecimal(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)), true
}

// MinInt returns the smaller of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
