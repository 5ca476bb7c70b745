package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusRefunded  BookingStatus = "REFUNDED"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch status := BookingStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case BookingStatusPending, BookingStatusPaid, BookingStatusCancelled, BookingStatusRefunded:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrInvalidStatus, s)
}

// HoldsCapacity reports whether a booking in this status counts against the event capacity.
func (s BookingStatus) HoldsCapacity() bool {
	return s == BookingStatusPending || s == BookingStatusPaid
}

type Tier string

const (
	TierNone   Tier = "NONE"
	TierVVIP   Tier = "VVIP"
	TierVIP    Tier = "VIP"
	TierCasual Tier = "CASUAL"
)

const (
	MinTicketsPerBooking = 1
	MaxTicketsPerBooking = 10
)

type Booking struct {
	ID           int64
	EventID      int64
	UserID       int64
	Tickets      int
	Tier         Tier
	TotalAmount  int64
	TicketNumber string
	Status       BookingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
