package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTicketCount = fmt.Errorf("ticket count must be between %d and %d", MinTicketsPerBooking, MaxTicketsPerBooking)
	ErrInvalidEvent       = errors.New("invalid event")
	ErrInvalidStatus      = errors.New("invalid payment status")
	ErrInvalidTier        = errors.New("invalid ticket tier")

	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrAlreadyCancelled     = errors.New("booking is already cancelled")
	ErrEventHasPaidBookings = errors.New("event has paid bookings and has not expired")
	ErrCapacityLocked       = errors.New("capacity cannot change once bookings exist")
	ErrStaleBooking         = errors.New("booking was modified concurrently")
	ErrEventClosed          = errors.New("event is not open for booking")

	ErrForbidden = errors.New("operation not permitted")
)

func invalidEvent(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, reason)
}

// CapacityExceededError is returned when a reservation does not fit the remaining capacity.
type CapacityExceededError struct {
	EventID   int64
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("only %d tickets left for event %d, requested %d", e.Available, e.EventID, e.Requested)
}

type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// PersistenceError wraps a store failure that is not a domain outcome.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err into a PersistenceError unless it already carries a domain outcome.
func Persistence(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTicketCount) ||
		errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidTier)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

func IsConflictError(err error) bool {
	var transition *InvalidTransitionError
	return errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrEventHasPaidBookings) ||
		errors.Is(err, ErrCapacityLocked) ||
		errors.Is(err, ErrStaleBooking) ||
		errors.Is(err, ErrEventClosed) ||
		errors.As(err, &transition)
}

func IsCapacityError(err error) (*CapacityExceededError, bool) {
	var capErr *CapacityExceededError
	if errors.As(err, &capErr) {
		return capErr, true
	}
	return nil, false
}

func IsDomainError(err error) bool {
	_, capacity := IsCapacityError(err)
	return capacity ||
		IsValidationError(err) ||
		IsNotFoundError(err) ||
		IsConflictError(err) ||
		errors.Is(err, ErrForbidden)
}
