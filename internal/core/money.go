// Package core holds the funding domain: money values, income records,
// the company aggregate and the funding calculation itself.
//
// This file contains the Money value object. Amounts are arbitrary-precision
// decimals tagged with a currency; every operation returns a new value.
package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency identifies the denomination of a Money value.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrDivideByZero     = errors.New("divide by zero")
)

// Money is an immutable currency-tagged decimal amount.
//
// The zero value (and any Money whose amount is zero) is currency-agnostic:
// it combines and compares with operands of any currency. Arithmetic or
// comparison between two non-zero values of different currencies fails with
// ErrCurrencyMismatch.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// Zero returns the distinguished currency-agnostic zero amount.
func Zero() Money {
	return Money{}
}

// NewMoney creates a Money value in the given currency.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// NewUSD creates a US-dollar Money value.
func NewUSD(amount decimal.Decimal) Money {
	return NewMoney(amount, USD)
}

// IsZero reports whether the amount equals the distinguished zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// Equal reports structural equality over (amount, currency).
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// Cmp compares two amounts, returning -1, 0 or 1.
//
// A zero operand is compared numerically regardless of currency; otherwise
// both operands must share a currency.
func (m Money) Cmp(other Money) (int, error) {
	if !m.IsZero() && !other.IsZero() && m.Currency != other.Currency {
		return 0, fmt.Errorf("compare %s with %s: %w", m.Currency, other.Currency, ErrCurrencyMismatch)
	}
	return m.Amount.Cmp(other.Amount), nil
}

// LessThan reports m < other under Cmp's currency rules.
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c < 0, err
}

// LessThanOrEqual reports m <= other under Cmp's currency rules.
func (m Money) LessThanOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c <= 0, err
}

// GreaterThan reports m > other under Cmp's currency rules.
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c > 0, err
}

// GreaterThanOrEqual reports m >= other under Cmp's currency rules.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c >= 0, err
}

// Add returns m + other. Adding the zero value returns the other operand.
func (m Money) Add(other Money) (Money, error) {
	if other.IsZero() {
		return m, nil
	}
	if m.IsZero() {
		return other, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("add %s to %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Subtracting the zero value returns m; subtracting
// from the zero value returns the other operand negated.
func (m Money) Sub(other Money) (Money, error) {
	if other.IsZero() {
		return m, nil
	}
	if m.IsZero() {
		return Money{Amount: other.Amount.Neg(), Currency: other.Currency}, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("subtract %s from %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Mul returns m scaled by factor. A zero amount or zero factor yields Zero.
func (m Money) Mul(factor decimal.Decimal) Money {
	if m.IsZero() || factor.IsZero() {
		return Zero()
	}
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Div returns m divided by divisor. A zero divisor fails with ErrDivideByZero
// regardless of currency; dividing a zero amount yields Zero.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivideByZero
	}
	if m.IsZero() {
		return Zero(), nil
	}
	return Money{Amount: m.Amount.Div(divisor), Currency: m.Currency}, nil
}

// Round returns m rounded to the given number of decimal places, half away
// from zero.
func (m Money) Round(places int32) Money {
	return Money{Amount: m.Amount.Round(places), Currency: m.Currency}
}

func (m Money) String() string {
	if m.IsZero() {
		return m.Amount.String()
	}
	return m.Amount.String() + " " + string(m.Currency)
}
