// Package domain provides the board entities, task messages & domain level errors.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPlaneNotFound is returned when a plane id is not on the board
	ErrPlaneNotFound = errors.New("plane not found")

	// ErrFlightNotFound is returned when no matching flight exists for a plane id
	ErrFlightNotFound = errors.New("no matching flight found")

	// ErrUnavailable is returned when an external service is unreachable or
	// responds with something we can't parse
	ErrUnavailable = errors.New("external service unavailable")

	// ErrClaimConflict is returned when a flight is already represented by a
	// plane on the board
	ErrClaimConflict = errors.New("flight already claimed")

	// ErrBoardFull is returned when the board is at its plane capacity ceiling
	ErrBoardFull = errors.New("plane capacity reached")

	// ErrNotEnoughFuel is returned by takeoff when the tank is below the
	// flight's minimum
	ErrNotEnoughFuel = errors.New("not enough fuel for takeoff")
)

// FuelOutOfRangeError is returned when a fuel load amount is below the
// flight's minimum or above the tank ceiling.
type FuelOutOfRangeError struct {
	Amount int
	Min    int
	Max    int
}

func (e *FuelOutOfRangeError) Error() string {
	return fmt.Sprintf("fuel amount %d out of range [%d, %d]", e.Amount, e.Min, e.Max)
}

// CapacityExceededError is returned when a passenger load would exceed the
// plane's seat capacity.
type CapacityExceededError struct {
	Count int
	Max   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%d passengers exceed capacity %d", e.Count, e.Max)
}
