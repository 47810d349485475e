package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrTooManyDecimal = errors.New("amount has more than two decimal places")
	ErrAmountOverflow = errors.New("amount out of range")
)

// MaxAmountCents caps any single amount at 100,000,000.00. Sums of capped
// amounts still go through AddCents.
const MaxAmountCents int64 = 10_000_000_000

var maxCents = decimal.NewFromInt(MaxAmountCents)

// ParseCents converts a decimal string such as "10", "10.5" or "10.50" into
// integer cents. Trailing zeros beyond the second decimal place are accepted
// ("1.500"), any other sub-cent precision is rejected.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("%w: %q", ErrTooManyDecimal, s)
	}

	shifted := d.Shift(2)
	if shifted.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return shifted.IntPart(), nil
}

// AddCents returns a+b, or ErrAmountOverflow if the result does not fit in int64.
func AddCents(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %d + %d", ErrAmountOverflow, a, b)
	}
	return a + b, nil
}

// FormatCents renders cents as a fixed two-decimal string ("3.34", "-0.05").
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// SplitEvenly divides totalCents into n shares that sum exactly to totalCents.
// The remainder is handed out one cent at a time to the first shares, so
// 1000 over 3 gives [334, 333, 333].
func SplitEvenly(totalCents int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot split across %d participants", n)
	}
	if totalCents < 0 {
		return nil, fmt.Errorf("cannot split negative amount %d", totalCents)
	}

	base := totalCents / int64(n)
	remainder := totalCents % int64(n)

	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares, nil
}
