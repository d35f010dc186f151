// Package money wraps shopspring/decimal for the configuration and
// front-end layers of the valuation engine, where user-entered
// currency amounts (a policy's sum assured and premium) are
// parsed and validated before being narrowed to the float64 wire
// records the projection kernel operates on.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount represents a monetary value with exact decimal semantics,
// used only outside the hot path (config parsing, CLI, display).
type Amount struct {
	decimal.Decimal
}

// New creates an Amount from a float64.
func New(value float64) Amount {
	return Amount{decimal.NewFromFloat(value)}
}

// Zero is the additive identity.
func Zero() Amount {
	return Amount{decimal.Zero}
}

// Parse parses a decimal string into an Amount.
func Parse(value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return Amount{d}, nil
}

// Float64 narrows the amount to the float64 the kernel's wire records use.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal.Float64()
	return f
}

// RequireNonNegative returns an error if the amount is negative.
func (a Amount) RequireNonNegative(field string) error {
	if a.Decimal.IsNegative() {
		return fmt.Errorf("%s must be non-negative, got %s", field, a.Decimal.String())
	}
	return nil
}

// String formats the amount with two decimal places.
func (a Amount) String() string {
	return a.Decimal.StringFixed(2)
}
