package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with exact decimal arithmetic.
// A nil *Money is used throughout the domain for "absent" optional prices.
type Money struct {
	amount decimal.Decimal
}

// NewMoney parses a decimal string such as "735.55".
func NewMoney(value string) (*Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid money value %q: %w", value, err)
	}
	return &Money{amount: d}, nil
}

// MustMoney is NewMoney that panics, for literals in tests and fixtures.
func MustMoney(value string) *Money {
	m, err := NewMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromCents creates Money from an integer number of minor units.
func NewMoneyFromCents(cents int64) *Money {
	return &Money{amount: decimal.New(cents, -2)}
}

// NewMoneyFromDecimal wraps an existing decimal value.
func NewMoneyFromDecimal(d decimal.Decimal) *Money {
	return &Money{amount: d}
}

// NewMoneyFromRat converts a rational (Spanner NUMERIC) into Money.
// NUMERIC carries at most nine fractional digits, so the conversion is exact.
func NewMoneyFromRat(rat *big.Rat) (*Money, error) {
	if rat == nil {
		return &Money{amount: decimal.Zero}, nil
	}
	return NewMoney(rat.FloatString(9))
}

// Decimal returns the underlying decimal value.
func (m *Money) Decimal() decimal.Decimal { return m.amount }

// Rat returns the value as a big.Rat for storage in NUMERIC columns.
func (m *Money) Rat() *big.Rat { return m.amount.Rat() }

// Add adds two Money values and returns a new Money instance.
func (m *Money) Add(other *Money) *Money {
	return &Money{amount: m.amount.Add(other.amount)}
}

// Subtract subtracts another Money value from this one and returns a new Money instance.
func (m *Money) Subtract(other *Money) *Money {
	return &Money{amount: m.amount.Sub(other.amount)}
}

// MultiplyBy multiplies by an integer quantity.
func (m *Money) MultiplyBy(qty int64) *Money {
	return &Money{amount: m.amount.Mul(decimal.NewFromInt(qty))}
}

// Divide divides this Money value by another.
func (m *Money) Divide(other *Money) (decimal.Decimal, error) {
	if other.amount.IsZero() {
		return decimal.Zero, fmt.Errorf("cannot divide by zero")
	}
	return m.amount.Div(other.amount), nil
}

// IsZero returns true if the money value is zero.
func (m *Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative returns true if the money value is negative.
func (m *Money) IsNegative() bool { return m.amount.IsNegative() }

// IsPositive returns true if the money value is positive.
func (m *Money) IsPositive() bool { return m.amount.IsPositive() }

// LessThan returns true if this Money value is less than another.
func (m *Money) LessThan(other *Money) bool { return m.amount.LessThan(other.amount) }

// GreaterThan returns true if this Money value is greater than another.
func (m *Money) GreaterThan(other *Money) bool { return m.amount.GreaterThan(other.amount) }

// Equals returns true if this Money value equals another.
func (m *Money) Equals(other *Money) bool { return m.amount.Equal(other.amount) }

// Float64 returns an approximate float64 representation (for display only, not calculations).
func (m *Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String renders the value with two decimal places.
func (m *Money) String() string { return m.amount.StringFixed(2) }

// Copy returns an independent copy; nil stays nil.
func (m *Money) Copy() *Money {
	if m == nil {
		return nil
	}
	return &Money{amount: m.amount}
}

// MoneyEqual compares two optional values; two absent values are equal.
func MoneyEqual(a, b *Money) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// ParseOptionalMoney parses s when present; nil stays nil.
func ParseOptionalMoney(s *string) (*Money, error) {
	if s == nil {
		return nil, nil
	}
	return NewMoney(*s)
}
