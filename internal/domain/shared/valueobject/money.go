package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for every amount.
const MoneyScale int32 = 2

var hundred = decimal.NewFromInt(100)

// Money is a fixed-point monetary amount in the store's single currency.
// It is immutable: all operations return new values. Money may be negative
// (discount lines); entities enforce their own sign rules.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds amount half-up to two places
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(MoneyScale)}
}

// NewMoneyFromString parses a decimal string such as "19.99"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// MustMoney parses amount and panics on failure. Intended for constants and tests.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromInt creates Money from whole units
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Decimal returns the underlying decimal value
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	return NewMoney(m.amount.Sub(other.amount))
}

// Mul multiplies by a decimal factor, rounding the result
func (m Money) Mul(factor decimal.Decimal) Money {
	return NewMoney(m.amount.Mul(factor))
}

// MulInt multiplies by an integer factor such as a quantity or day count
func (m Money) MulInt(factor int64) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(factor)))
}

// Percent returns pct percent of m
func (m Money) Percent(pct decimal.Decimal) Money {
	return NewMoney(m.amount.Mul(pct).Div(hundred))
}

// Neg returns -m
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// Abs returns |m|
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// ClampZero returns m, or zero when m is negative
func (m Money) ClampZero() Money {
	if m.amount.IsNegative() {
		return Zero()
	}
	return m
}

// Equals compares amounts
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// GreaterThan returns m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual returns m >= other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// LessThan returns m < other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// Min returns the smaller of m and other
func (m Money) Min(other Money) Money {
	if other.LessThan(m) {
		return other
	}
	return m
}

// Max returns the larger of m and other
func (m Money) Max(other Money) Money {
	if other.GreaterThan(m) {
		return other
	}
	return m
}

// String renders the amount with exactly two decimals
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// Sum adds a list of amounts
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes Money as a fixed two-decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string ("12.50") or a JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		m.amount = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d.Round(MoneyScale)
	return nil
}

// UnmarshalParam lets query and form binding decode "12.50"
func (m *Money) UnmarshalParam(param string) error {
	return m.UnmarshalJSON([]byte(param))
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(MoneyScale), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d.Round(MoneyScale)
	return nil
}
