package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, use with errors.Is.
var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrValidation      = errors.New("validation error")

	// ErrPaymentDeclined is the simulated payment failure. By contract no
	// mutation has happened when it is returned, so the caller may retry.
	ErrPaymentDeclined = errors.New("payment declined (simulated)")

	// ErrLockTimeout means the per-flight lock could not be acquired within
	// the configured wait. Transient, safe to retry, no side effects.
	ErrLockTimeout = errors.New("timed out waiting for flight lock")

	// ErrReferenceCollision is surfaced by the store when a generated
	// reference code already exists; the engine retries with a fresh one.
	ErrReferenceCollision = errors.New("booking reference already exists")
)

// InsufficientSeatsError reports how many seats were actually available at
// the time of the check.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("only %d seats available", e.Available)
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
