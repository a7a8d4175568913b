package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is a wrapper around apd.Decimal so quote text can be combined
// without float rounding surprises.
type Decimal struct {
	apd.Decimal
}

// DefaultContext is used for arithmetic operations.
var DefaultContext = apd.BaseContext.WithPrecision(20)

// Zero constant for convenience
var Zero = NewDecimalFromInt(0)

var hundred = NewDecimalFromInt(100)

// NewDecimalFromInt creates a Decimal from an int64
func NewDecimalFromInt(v int64) Decimal {
	d := Decimal{}
	d.SetInt64(v)
	return d
}

// NewDecimalFromString creates a Decimal from a string. NaN and infinities
// are rejected, feed fields are either finite numbers or garbage.
func NewDecimalFromString(v string) (Decimal, error) {
	d := Decimal{}
	_, _, err := d.SetString(v)
	if err != nil {
		return d, fmt.Errorf("invalid decimal string %s: %w", v, err)
	}
	if d.Form != apd.Finite {
		return d, fmt.Errorf("invalid decimal string %s: not a finite number", v)
	}
	return d, nil
}

// String implements the fmt.Stringer interface.
func (d Decimal) String() string {
	return d.Decimal.String()
}

// Arithmetic Helpers

func (d Decimal) Sub(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Sub(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("sub operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) Mul(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Mul(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("mul operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) Div(other Decimal) (Decimal, error) {
	if other.IsZero() {
		return Zero, fmt.Errorf("division by zero")
	}
	res := Decimal{}
	if _, err := DefaultContext.Quo(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("div operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) IsZero() bool {
	return d.Decimal.IsZero()
}

func (d Decimal) Equal(other Decimal) bool {
	return d.Decimal.Cmp(&other.Decimal) == 0
}

// Round rounds half up to the given number of places, keeping trailing zeros.
func (d Decimal) Round(places int32) (Decimal, error) {
	res := Decimal{}
	ctx := apd.BaseContext.WithPrecision(20)
	ctx.Rounding = apd.RoundHalfUp

	if _, err := ctx.Quantize(&res.Decimal, &d.Decimal, -places); err != nil {
		return res, fmt.Errorf("quantize operation failed: %w", err)
	}
	if res.IsZero() {
		// drop the sign of -0.00
		res.Negative = false
	}
	return res, nil
}

// PercentChange derives (price - previousClose) / previousClose * 100 with two
// decimals. Anything that cannot be computed yields "0.00".
func PercentChange(price, previousClose string) string {
	const fallback = "0.00"

	prev, err := NewDecimalFromString(previousClose)
	if err != nil || prev.IsZero() {
		return fallback
	}
	current, err := NewDecimalFromString(price)
	if err != nil {
		return fallback
	}

	delta, err := current.Sub(prev)
	if err != nil {
		return fallback
	}
	ratio, err := delta.Div(prev)
	if err != nil {
		return fallback
	}
	pct, err := ratio.Mul(hundred)
	if err != nil {
		return fallback
	}
	rounded, err := pct.Round(2)
	if err != nil {
		return fallback
	}
	return rounded.String()
}
