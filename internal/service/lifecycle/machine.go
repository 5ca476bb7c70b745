// Package lifecycle moves bookings between payment states and fires the side effects of each edge.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/repository"
)

const maxStaleRetries = 3

type Ledger interface {
	Release(ctx context.Context, booking *domain.Booking, to domain.BookingStatus) (*domain.Booking, error)
	Readmit(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

type Store interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Transition(ctx context.Context, change repository.StatusChange) (*domain.Booking, error)
}

type effect int

const (
	effectNone effect = iota
	effectRelease
	effectReadmit
)

type edge struct {
	from domain.BookingStatus
	to   domain.BookingStatus
}

type rule struct {
	effect        effect
	notifications []domain.NotificationType
}

var transitions = map[edge]rule{
	{domain.BookingStatusPending, domain.BookingStatusPaid}: {
		notifications: []domain.NotificationType{domain.NotificationPaymentConfirmed, domain.NotificationTicketReady},
	},
	{domain.BookingStatusPending, domain.BookingStatusCancelled}:  {effect: effectRelease},
	{domain.BookingStatusPaid, domain.BookingStatusCancelled}:     {effect: effectRelease},
	{domain.BookingStatusPending, domain.BookingStatusRefunded}:   {effect: effectRelease},
	{domain.BookingStatusPaid, domain.BookingStatusRefunded}:      {effect: effectRelease},
	{domain.BookingStatusCancelled, domain.BookingStatusPending}: {
		effect:        effectReadmit,
		notifications: []domain.NotificationType{domain.NotificationBookingApproved},
	},
}

// Allowed reports whether a booking in status from may move to status to. Same-state moves are
// allowed except for cancelling twice.
func Allowed(from, to domain.BookingStatus) bool {
	if from == to {
		return from != domain.BookingStatusCancelled
	}
	_, ok := transitions[edge{from, to}]
	return ok
}

type Machine struct {
	ledger   Ledger
	bookings Store
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewMachine(ledger Ledger, bookings Store, notifier notify.Notifier, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		ledger:   ledger,
		bookings: bookings,
		notifier: notifier,
		log:      log.Named("lifecycle"),
		now:      time.Now,
	}
}

// Transition moves booking to status to. When the stored status changed since booking was read, the
// booking is reloaded and the move planned again, so concurrent identical requests apply once.
func (m *Machine) Transition(ctx context.Context, booking *domain.Booking, to domain.BookingStatus) (*domain.Booking, error) {
	current := booking
	for attempt := 0; ; attempt++ {
		updated, changed, err := m.apply(ctx, current, to)
		if err == nil {
			if changed {
				m.fire(current.Status, updated)
			}
			return updated, nil
		}
		if !errors.Is(err, domain.ErrStaleBooking) || attempt >= maxStaleRetries {
			return nil, err
		}

		current, err = m.bookings.GetByID(ctx, booking.ID)
		if err != nil {
			return nil, domain.Persistence("reload booking", err)
		}
		m.log.Debug("booking changed concurrently, replanning",
			zap.Int64("booking_id", booking.ID),
			zap.String("status", string(current.Status)),
			zap.Int("attempt", attempt+1))
	}
}

func (m *Machine) apply(ctx context.Context, booking *domain.Booking, to domain.BookingStatus) (*domain.Booking, bool, error) {
	from := booking.Status
	if from == to {
		if from == domain.BookingStatusCancelled {
			return nil, false, domain.ErrAlreadyCancelled
		}
		return booking, false, nil
	}

	r, ok := transitions[edge{from, to}]
	if !ok {
		return nil, false, &domain.InvalidTransitionError{From: from, To: to}
	}

	var (
		updated *domain.Booking
		err     error
	)
	switch r.effect {
	case effectRelease:
		updated, err = m.ledger.Release(ctx, booking, to)
	case effectReadmit:
		updated, err = m.ledger.Readmit(ctx, booking)
	default:
		updated, err = m.bookings.Transition(ctx, repository.StatusChange{
			BookingID: booking.ID,
			EventID:   booking.EventID,
			From:      from,
			To:        to,
		})
		if err != nil {
			err = domain.Persistence("update booking status", err)
		}
	}
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// fire only enqueues. The event name is left for the notification workers to fill in.
func (m *Machine) fire(from domain.BookingStatus, booking *domain.Booking) {
	r := transitions[edge{from, booking.Status}]
	if len(r.notifications) == 0 || m.notifier == nil {
		return
	}

	at := m.now()
	for _, t := range r.notifications {
		m.notifier.Notify(domain.BookingNotification(t, domain.AudienceUser, booking, "", at))
	}
}
