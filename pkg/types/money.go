package types

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount is the upper bound accepted for a single expense or income.
var MaxAmount = decimal.NewFromInt(1_000_000)

// Amount is an exact monetary value. It wraps decimal.Decimal so that
// amounts survive JSON round-trips without float drift, but marshals as a
// plain JSON number (42.5, not "42.5") to match the export file format.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses s as a decimal amount.
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

// AmountFromFloat converts f to an Amount. Intended for test fixtures and
// CLI flag values; stored data goes through NewAmount to stay exact.
func AmountFromFloat(f float64) Amount {
	return Amount{decimal.NewFromFloat(f)}
}

// InRange reports whether the amount is positive and at most MaxAmount.
func (a Amount) InRange() bool {
	return a.IsPositive() && a.LessThanOrEqual(Amount{MaxAmount}.Decimal)
}

// MarshalJSON writes the amount as an unquoted JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both a JSON number and a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", s, err)
	}
	a.Decimal = d
	return nil
}
