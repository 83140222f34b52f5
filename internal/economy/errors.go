// Package economy provides the pure calculators of the game economy:
// geography, travel, yields, prices, taxes and player progression.
package economy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for physically meaningless inputs such as a
// non-positive speed or negative hectares. Callers leave state unchanged.
var ErrInvalidInput = errors.New("invalid input")

func invalid(field string, v float64) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidInput, field, v)
}

// nonNegative rejects NaN and negative values.
func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return invalid(field, v)
	}
	return nil
}
