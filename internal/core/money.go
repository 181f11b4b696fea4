// Package core provides the SmartSaku domain model: records, ledgers,
// money parsing, and the read-side aggregation helpers.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Amounts must be strictly positive.
//
// Examples:
//
//	ParseDecimalToCents("50000")  -> 5000000, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	cents := iv * 100

	// Fractional part: two digits, half-up rounding on the third.
	switch {
	case len(fracPart) == 0:
	case len(fracPart) == 1:
		d, _ := strconv.ParseInt(fracPart, 10, 64)
		cents += d * 10
	default:
		d, _ := strconv.ParseInt(fracPart[:2], 10, 64)
		cents += d
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			cents++
		}
	}

	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Float returns the amount as a decimal number of currency units.
// Used at the API boundary, where amounts travel as JSON numbers.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100
}

// MoneyFromFloat converts a JSON amount into Money, rejecting values that
// cannot be represented exactly enough in cents.
func MoneyFromFloat(v float64) (Money, error) {
	if v <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := int64(v*100 + 0.5)
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// FormatRupiah renders cents as an amount string like "Rp50000" or
// "Rp12.34" for display in logs and advisory prompts.
func FormatRupiah(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(units, 10)
	if rem != 0 {
		s += "." + fmt.Sprintf("%02d", rem)
	}
	if neg {
		return "-Rp" + s
	}
	return "Rp" + s
}
