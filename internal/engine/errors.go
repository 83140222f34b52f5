package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/geofarm/internal/economy"
)

var (
	// ErrNotFound is returned when an action references a missing entity.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an entity ID is already in use.
	ErrDuplicate = errors.New("duplicate id")

	// ErrInvalidInput is shared with the economy calculators so callers can
	// test a single sentinel.
	ErrInvalidInput = economy.ErrInvalidInput

	// ErrVehicleBusy is returned when dispatching a vehicle that is not idle.
	ErrVehicleBusy = errors.New("vehicle is not idle")

	// ErrInsufficientFuel is returned when a trip needs more fuel than the tank holds.
	ErrInsufficientFuel = errors.New("insufficient fuel")

	// ErrFixedPace is returned when changing speed on a clock that cannot scale.
	ErrFixedPace = errors.New("clock has a fixed pace")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
