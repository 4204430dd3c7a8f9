package wallet

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

// maxAmountCents caps a single transaction at one billion currency units so
// int64 cent arithmetic can never overflow.
const maxAmountCents = int64(1_000_000_000_00)

// ParseAmountCents converts a decimal string like "100.00" into cents.
func ParseAmountCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := d.Mul(decimal.NewFromInt(100))
	if !cents.IsInteger() {
		return 0, ErrInvalidAmount
	}

	v := cents.IntPart()
	if v <= 0 || v > maxAmountCents {
		return 0, ErrInvalidAmount
	}

	return v, nil
}

// FormatCents renders cents as a fixed two-decimal string for API responses.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
