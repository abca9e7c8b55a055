package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency formats amount with thousands separators and two decimals.
// Example: FormatCurrency(15000.5, "$") -> "$15,000.50"
func FormatCurrency(amount float64, symbol string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	formatted := fmt.Sprintf("%.2f", math.Round(amount*100)/100)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + symbol + strings.Join(groups, ",") + "." + decimalPart
}

// RoundMoney rounds to cents.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
