package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Quantity is a non-negative whole count of units.
type Quantity struct {
	value int64
}

// ErrNegativeQuantity is returned when arithmetic would go below zero.
type ErrNegativeQuantity struct {
	Value int64
}

func (e *ErrNegativeQuantity) Error() string {
	return fmt.Sprintf("quantity cannot be negative: %d", e.Value)
}

// NewQuantity validates that v is not negative
func NewQuantity(v int64) (Quantity, error) {
	if v < 0 {
		return Quantity{}, &ErrNegativeQuantity{Value: v}
	}
	return Quantity{value: v}, nil
}

// MustQuantity panics on a negative value. Intended for literals and tests.
func MustQuantity(v int64) Quantity {
	q, err := NewQuantity(v)
	if err != nil {
		panic(err)
	}
	return q
}

// ZeroQuantity returns 0
func ZeroQuantity() Quantity {
	return Quantity{}
}

// Int64 returns the raw count
func (q Quantity) Int64() int64 {
	return q.value
}

// IsZero reports q == 0
func (q Quantity) IsZero() bool {
	return q.value == 0
}

// Add returns q + delta; delta may be negative but the result may not.
func (q Quantity) Add(delta int64) (Quantity, error) {
	return NewQuantity(q.value + delta)
}

// Sub returns q - n, failing when the result would be negative
func (q Quantity) Sub(n int64) (Quantity, error) {
	return NewQuantity(q.value - n)
}

// LessThan returns q < n
func (q Quantity) LessThan(n int64) bool {
	return q.value < n
}

// String renders the count
func (q Quantity) String() string {
	return strconv.FormatInt(q.value, 10)
}

// MarshalJSON encodes as a JSON integer
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.value)
}

// UnmarshalJSON rejects negative and non-integer input
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid quantity: %w", err)
	}
	parsed, err := NewQuantity(v)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Value implements driver.Valuer
func (q Quantity) Value() (driver.Value, error) {
	return q.value, nil
}

// Scan implements sql.Scanner
func (q *Quantity) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		q.value = 0
	case int64:
		q.value = v
	case int32:
		q.value = int64(v)
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot scan %q into Quantity: %w", v, err)
		}
		q.value = n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot scan %q into Quantity: %w", v, err)
		}
		q.value = n
	default:
		return fmt.Errorf("cannot scan %T into Quantity", value)
	}
	if q.value < 0 {
		return &ErrNegativeQuantity{Value: q.value}
	}
	return nil
}
