package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBalancingDeadlock is returned when redistribution cannot make progress
	ErrBalancingDeadlock = errors.New("balancing deadlock")

	// ErrInstrumentNotFound is returned by repositories for unknown instruments
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrSeriesNotFound is returned when an instrument has no return series
	ErrSeriesNotFound = errors.New("return series not found")
)

// BalancingDeadlockError describes a redistribution that stalled.
// Every other unlocked bucket was already at its boundary (0 when taking points,
// 100 when giving them) while Remaining points were still owed.
type BalancingDeadlockError struct {
	BucketID  string
	Remaining int
	Increase  bool
}

func (e *BalancingDeadlockError) Error() string {
	direction := "decrease"
	if e.Increase {
		direction = "increase"
	}
	return fmt.Sprintf("balancing deadlock: %s of %q stalled with %d points left to redistribute",
		direction, e.BucketID, e.Remaining)
}

// Is makes errors.Is(err, ErrBalancingDeadlock) match
func (e *BalancingDeadlockError) Is(target error) bool {
	return target == ErrBalancingDeadlock
}
