package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/pricing"
	"github.com/Domenick1991/eventbooking/internal/repository"
	"github.com/Domenick1991/eventbooking/internal/service/capacity"
	"github.com/Domenick1991/eventbooking/internal/service/lifecycle"
	"github.com/Domenick1991/eventbooking/internal/ticketid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, session domain.Session, id int64) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListEventBookings(ctx context.Context, session domain.Session, eventID int64) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, session domain.Session, id int64) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, session domain.Session, id int64, status domain.BookingStatus) (*domain.Booking, error)
	GetAvailableCapacity(ctx context.Context, eventID int64) (int, error)
}

type TicketGenerator interface {
	Next() string
}

type CreateBookingInput struct {
	EventID int64  `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Tickets int    `json:"tickets"`
	Tier    string `json:"tier"`
}

type BookingService struct {
	bookings repository.BookingRepository
	events   repository.EventRepository
	ledger   *capacity.Ledger
	machine  *lifecycle.Machine
	tickets  TicketGenerator
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithTicketGenerator(g TicketGenerator) BookingServiceOption {
	return func(s *BookingService) {
		s.tickets = g
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	notifier notify.Notifier,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		events:   events,
		notifier: notifier,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.tickets == nil {
		service.tickets = ticketid.New(ticketid.WithClock(service.now))
	}
	service.ledger = capacity.NewLedger(bookings, events)
	service.machine = lifecycle.NewMachine(service.ledger, bookings, notifier, service.log)
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.Tickets < domain.MinTicketsPerBooking || input.Tickets > domain.MaxTicketsPerBooking {
		return nil, domain.ErrInvalidTicketCount
	}

	event, err := s.events.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, domain.Persistence("load event", err)
	}
	if !event.Bookable() {
		return nil, domain.ErrEventClosed
	}

	requested, err := pricing.ParseTier(input.Tier)
	if err != nil {
		return nil, err
	}
	tier, err := pricing.NormalizeTier(event, requested)
	if err != nil {
		return nil, err
	}
	total, err := pricing.Total(event, tier, input.Tickets)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		EventID:      event.ID,
		UserID:       input.UserID,
		Tickets:      input.Tickets,
		Tier:         tier,
		TotalAmount:  total,
		TicketNumber: s.tickets.Next(),
		Status:       domain.BookingStatusPending,
	}
	if err := s.ledger.TryReserve(ctx, booking); err != nil {
		if capErr, ok := domain.IsCapacityError(err); ok {
			s.log.Info("booking rejected, capacity exhausted",
				zap.Int64("event_id", event.ID),
				zap.Int("requested", capErr.Requested),
				zap.Int("available", capErr.Available))
		}
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("event_id", booking.EventID),
		zap.String("ticket_number", booking.TicketNumber),
		zap.Int("tickets", booking.Tickets))
	if s.notifier != nil {
		s.notifier.Notify(domain.BookingNotification(domain.NotificationNewBooking, domain.AudienceAdmins, booking, event.Name, s.now()))
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, session domain.Session, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load booking", err)
	}
	if booking.UserID != session.UserID && !session.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("list user bookings", err)
	}
	return bookings, nil
}

// ListEventBookings is open to admins and to the organizer of the event.
func (s *BookingService) ListEventBookings(ctx context.Context, session domain.Session, eventID int64) ([]domain.Booking, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, domain.Persistence("load event", err)
	}
	if !session.CanManageEvent(event.OrganizerID) {
		return nil, domain.ErrForbidden
	}
	bookings, err := s.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, domain.Persistence("list event bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, session domain.Session, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load booking", err)
	}
	if booking.UserID != session.UserID && !session.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	updated, err := s.machine.Transition(ctx, booking, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled", zap.Int64("booking_id", id), zap.Int64("user_id", session.UserID))
	return updated, nil
}

func (s *BookingService) UpdatePaymentStatus(ctx context.Context, session domain.Session, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !session.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if _, err := domain.ParseBookingStatus(string(status)); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load booking", err)
	}
	updated, err := s.machine.Transition(ctx, booking, status)
	if err != nil {
		return nil, err
	}
	if updated.Status != booking.Status {
		s.log.Info("payment status updated",
			zap.Int64("booking_id", id),
			zap.String("from", string(booking.Status)),
			zap.String("to", string(updated.Status)))
	}
	return updated, nil
}

func (s *BookingService) GetAvailableCapacity(ctx context.Context, eventID int64) (int, error) {
	return s.ledger.Available(ctx, eventID)
}

var _ BookingUseCase = (*BookingService)(nil)
