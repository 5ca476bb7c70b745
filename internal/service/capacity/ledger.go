// Package capacity guards the per-event ticket counter. Every mutation goes through a single conditional
// store statement, so the sold count never exceeds the event capacity whatever the concurrency.
package capacity

import (
	"context"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/repository"
)

type Store interface {
	CreateReserved(ctx context.Context, booking *domain.Booking) error
	Transition(ctx context.Context, change repository.StatusChange) (*domain.Booking, error)
}

type EventReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
}

type Ledger struct {
	bookings Store
	events   EventReader
}

func NewLedger(bookings Store, events EventReader) *Ledger {
	return &Ledger{bookings: bookings, events: events}
}

// TryReserve claims booking.Tickets seats and persists the booking as one atomic unit. On
// *domain.CapacityExceededError nothing is persisted.
func (l *Ledger) TryReserve(ctx context.Context, booking *domain.Booking) error {
	if err := l.bookings.CreateReserved(ctx, booking); err != nil {
		return domain.Persistence("reserve tickets", err)
	}
	return nil
}

// Release moves a capacity-holding booking to a status that does not hold capacity and gives its seats
// back.
func (l *Ledger) Release(ctx context.Context, booking *domain.Booking, to domain.BookingStatus) (*domain.Booking, error) {
	if !booking.Status.HoldsCapacity() || to.HoldsCapacity() {
		return nil, &domain.InvalidTransitionError{From: booking.Status, To: to}
	}
	updated, err := l.bookings.Transition(ctx, repository.StatusChange{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		From:      booking.Status,
		To:        to,
		Delta:     -booking.Tickets,
	})
	if err != nil {
		return nil, domain.Persistence("release tickets", err)
	}
	return updated, nil
}

// Readmit puts a cancelled booking back to pending, re-checking capacity under the same guard as
// TryReserve.
func (l *Ledger) Readmit(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if booking.Status != domain.BookingStatusCancelled {
		return nil, &domain.InvalidTransitionError{From: booking.Status, To: domain.BookingStatusPending}
	}
	updated, err := l.bookings.Transition(ctx, repository.StatusChange{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		From:      domain.BookingStatusCancelled,
		To:        domain.BookingStatusPending,
		Delta:     booking.Tickets,
	})
	if err != nil {
		return nil, domain.Persistence("readmit booking", err)
	}
	return updated, nil
}

func (l *Ledger) Available(ctx context.Context, eventID int64) (int, error) {
	event, err := l.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, domain.Persistence("load event", err)
	}
	return event.Available(), nil
}
