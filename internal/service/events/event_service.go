package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/repository"
)

type EventUseCase interface {
	CreateEvent(ctx context.Context, session domain.Session, input EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, session domain.Session, id int64, input EventInput) (*domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	DeleteEvent(ctx context.Context, session domain.Session, id int64) error
	ExpireEvents(ctx context.Context) ([]domain.Event, error)
}

type EventCache interface {
	GetEvents(ctx context.Context) ([]domain.Event, error)
	SetEvents(ctx context.Context, events []domain.Event) error
	InvalidateEvents(ctx context.Context) error
}

type EventInput struct {
	Name        string             `json:"name"`
	Venue       string             `json:"venue"`
	OrganizerID int64              `json:"organizer_id"`
	Capacity    int                `json:"capacity"`
	PricingType domain.PricingType `json:"pricing_type"`
	FlatPrice   int64              `json:"flat_price"`
	VVIPPrice   int64              `json:"vvip_price"`
	VIPPrice    int64              `json:"vip_price"`
	CasualPrice int64              `json:"casual_price"`
	StartsAt    time.Time          `json:"starts_at"`
}

func (in EventInput) apply(event *domain.Event) {
	event.Name = in.Name
	event.Venue = in.Venue
	event.Capacity = in.Capacity
	event.PricingType = in.PricingType
	event.FlatPrice = in.FlatPrice
	event.VVIPPrice = in.VVIPPrice
	event.VIPPrice = in.VIPPrice
	event.CasualPrice = in.CasualPrice
	event.StartsAt = in.StartsAt
}

type EventService struct {
	repo     repository.EventRepository
	cache    EventCache
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

type EventServiceOption func(*EventService)

func WithCache(cache EventCache) EventServiceOption {
	return func(s *EventService) {
		s.cache = cache
	}
}

func WithLogger(log *zap.Logger) EventServiceOption {
	return func(s *EventService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) EventServiceOption {
	return func(s *EventService) {
		s.now = now
	}
}

func NewEventService(repo repository.EventRepository, notifier notify.Notifier, opts ...EventServiceOption) *EventService {
	service := &EventService{
		repo:     repo,
		notifier: notifier,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateEvent is open to admins and organizers. Organizers always own the events they create; admins
// may create on behalf of another organizer.
func (s *EventService) CreateEvent(ctx context.Context, session domain.Session, input EventInput) (*domain.Event, error) {
	if session.Role != domain.RoleAdmin && session.Role != domain.RoleOrganizer {
		return nil, domain.ErrForbidden
	}

	event := &domain.Event{OrganizerID: session.UserID, Status: domain.EventStatusScheduled}
	if session.IsAdmin() && input.OrganizerID != 0 {
		event.OrganizerID = input.OrganizerID
	}
	input.apply(event)
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, domain.Persistence("create event", err)
	}
	s.invalidate(ctx)

	s.log.Info("event created", zap.Int64("event_id", event.ID), zap.Int64("organizer_id", event.OrganizerID))
	s.notify(domain.Notification{
		Type:       domain.NotificationNewEvent,
		Audience:   domain.AudienceAll,
		EventID:    event.ID,
		EventName:  event.Name,
		OccurredAt: s.now(),
	})
	return event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, session domain.Session, id int64, input EventInput) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load event", err)
	}
	if !session.CanManageEvent(event.OrganizerID) {
		return nil, domain.ErrForbidden
	}

	input.apply(event)
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, domain.Persistence("update event", err)
	}
	s.invalidate(ctx)
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load event", err)
	}
	return event, nil
}

// ListEvents serves the catalog from the cache when it holds a copy. Cache failures fall back to the
// store.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if s.cache != nil {
		cached, err := s.cache.GetEvents(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.log.Warn("event cache read failed", zap.Error(err))
		}
	}

	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list events", err)
	}
	if s.cache != nil {
		if err := s.cache.SetEvents(ctx, events); err != nil {
			s.log.Warn("event cache write failed", zap.Error(err))
		}
	}
	return events, nil
}

// DeleteEvent removes an event together with its bookings. Events that have not started yet are kept
// while they have paid bookings.
func (s *EventService) DeleteEvent(ctx context.Context, session domain.Session, id int64) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Persistence("load event", err)
	}
	if !session.CanManageEvent(event.OrganizerID) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id, s.now()); err != nil {
		return domain.Persistence("delete event", err)
	}
	s.invalidate(ctx)
	s.log.Info("event deleted", zap.Int64("event_id", id), zap.Int64("user_id", session.UserID))
	return nil
}

// ExpireEvents completes every open event whose start time has passed and tells each organizer.
func (s *EventService) ExpireEvents(ctx context.Context) ([]domain.Event, error) {
	now := s.now()
	expired, err := s.repo.ExpireStartedBefore(ctx, now)
	if err != nil {
		return nil, domain.Persistence("expire events", err)
	}
	if len(expired) == 0 {
		return expired, nil
	}

	s.invalidate(ctx)
	for _, event := range expired {
		s.notify(domain.Notification{
			Type:       domain.NotificationEventExpired,
			Audience:   domain.AudienceUser,
			UserID:     event.OrganizerID,
			EventID:    event.ID,
			EventName:  event.Name,
			Tickets:    event.SoldTickets,
			OccurredAt: now,
		})
	}
	s.log.Info("events expired", zap.Int("count", len(expired)))
	return expired, nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvents(ctx); err != nil {
		s.log.Warn("event cache invalidation failed", zap.Error(err))
	}
}

func (s *EventService) notify(n domain.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

var _ EventUseCase = (*EventService)(nil)
