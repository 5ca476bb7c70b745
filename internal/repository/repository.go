package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	// Update rejects capacity changes with domain.ErrCapacityLocked once the event has bookings.
	Update(ctx context.Context, event *domain.Event) error
	// Delete removes the event unless it has paid bookings and starts after now.
	Delete(ctx context.Context, id int64, now time.Time) error
	// ExpireStartedBefore completes every scheduled or ongoing event that started before deadline.
	ExpireStartedBefore(ctx context.Context, deadline time.Time) ([]domain.Event, error)
}

type BookingRepository interface {
	// CreateReserved adds booking.Tickets to the event's sold counter and inserts the booking in one
	// transaction. It fails with *domain.CapacityExceededError when the tickets do not fit.
	CreateReserved(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error)
	Transition(ctx context.Context, change StatusChange) (*domain.Booking, error)
}

// StatusChange moves a booking from one payment status to another and adjusts the event's sold counter
// by Delta in the same transaction. A positive Delta must fit the remaining capacity.
type StatusChange struct {
	BookingID int64
	EventID   int64
	From      domain.BookingStatus
	To        domain.BookingStatus
	Delta     int
}
