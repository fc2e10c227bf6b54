package tracker

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// reportingCurrency is the single currency of the whole tracker.
// Multi-currency accounting is out of scope.
const reportingCurrency = money.USD

// Money represents a monetary value in the reporting currency.
//
// The value is kept exact during accumulation; rounding to the currency's
// fraction happens only at the point of persistence.
type Money struct {
	value decimal.Decimal
}

// M is a convenient factory for Money.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// currency returns the full reporting currency definition.
func (m Money) currency() money.Currency {
	// to get a never nil currency we go through the Money constructor
	return *money.New(0, reportingCurrency).Currency()
}

// String returns the formatted representation of the money value, e.g. "$52.75".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with an
// explicit sign. Zero is represented as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money            { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money            { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money         { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money         { return Money{value: m.value.Div(q.value)} }

// Rounded returns the value rounded to the currency's fraction (2 decimal
// places for USD). Used only when persisting or fingerprinting.
func (m Money) Rounded() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction))}
}

// Decimal exposes the exact underlying value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// MarshalJSON writes the value as a plain JSON number rounded to the
// currency's fraction.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.Round(int32(m.currency().Fraction)).MarshalJSON()
}

// UnmarshalJSON reads the value from a plain JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
