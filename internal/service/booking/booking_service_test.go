package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/repository"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateReserved(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Transition(ctx context.Context, change repository.StatusChange) (*domain.Booking, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id int64, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockEventRepository) ExpireStartedBefore(ctx context.Context, deadline time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Event), args.Error(1)
}

type fixedTickets string

func (f fixedTickets) Next() string { return string(f) }

type captureNotifier struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (c *captureNotifier) Notify(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, n)
}

func (c *captureNotifier) all() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Notification(nil), c.got...)
}

var (
	admin = domain.Session{UserID: 1, Role: domain.RoleAdmin}
	owner = domain.Session{UserID: 42, Role: domain.RoleUser}
	other = domain.Session{UserID: 43, Role: domain.RoleUser}
)

func flatEvent() *domain.Event {
	return &domain.Event{
		ID:          1,
		Name:        "Rock Fest",
		OrganizerID: 10,
		Capacity:    100,
		PricingType: domain.PricingFlat,
		FlatPrice:   5000,
		Status:      domain.EventStatusScheduled,
	}
}

func tieredEvent() *domain.Event {
	return &domain.Event{
		ID:          2,
		Name:        "Opera Gala",
		OrganizerID: 10,
		Capacity:    50,
		PricingType: domain.PricingTiered,
		FlatPrice:   5000,
		VVIPPrice:   30000,
		VIPPrice:    15000,
		Status:      domain.EventStatusScheduled,
	}
}

func newTestService(bookings *MockBookingRepository, events *MockEventRepository, notifier *captureNotifier) *BookingService {
	return NewBookingService(bookings, events, notifier, WithTicketGenerator(fixedTickets("TKT-TEST")))
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	notifier := &captureNotifier{}
	service := newTestService(mockBookingRepo, mockEventRepo, notifier)

	mockEventRepo.On("GetByID", ctx, int64(1)).Return(flatEvent(), nil).Once()
	mockBookingRepo.On("CreateReserved", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.EventID == 1 && b.UserID == 42 && b.Tickets == 2 && b.TotalAmount == 10000 &&
			b.Tier == domain.TierNone && b.TicketNumber == "TKT-TEST" && b.Status == domain.BookingStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = 99
	}).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{EventID: 1, UserID: 42, Tickets: 2, Tier: "VIP"})

	require.NoError(t, err)
	assert.Equal(t, int64(99), booking.ID)
	assert.Equal(t, int64(10000), booking.TotalAmount)

	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.NotificationNewBooking, sent[0].Type)
	assert.Equal(t, domain.AudienceAdmins, sent[0].Audience)
	assert.Equal(t, "Rock Fest", sent[0].EventName)

	mockBookingRepo.AssertExpectations(t)
	mockEventRepo.AssertExpectations(t)
}

func TestBookingService_CreateBooking_TieredPricing(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	service := newTestService(mockBookingRepo, mockEventRepo, &captureNotifier{})

	mockEventRepo.On("GetByID", ctx, int64(2)).Return(tieredEvent(), nil)
	mockBookingRepo.On("CreateReserved", ctx, mock.Anything).Return(nil)

	booking, err := service.CreateBooking(ctx, CreateBookingInput{EventID: 2, UserID: 42, Tickets: 3, Tier: "vvip"})
	require.NoError(t, err)
	assert.Equal(t, domain.TierVVIP, booking.Tier)
	assert.Equal(t, int64(90000), booking.TotalAmount)

	// Casual has no configured price and falls back to the flat price.
	booking, err = service.CreateBooking(ctx, CreateBookingInput{EventID: 2, UserID: 42, Tickets: 2, Tier: "CASUAL"})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), booking.TotalAmount)

	_, err = service.CreateBooking(ctx, CreateBookingInput{EventID: 2, UserID: 42, Tickets: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
}

func TestBookingService_CreateBooking_UnpricedTierNeverReserves(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	service := newTestService(mockBookingRepo, mockEventRepo, &captureNotifier{})

	event := tieredEvent()
	event.FlatPrice = 0
	event.VIPPrice = 0
	mockEventRepo.On("GetByID", ctx, int64(2)).Return(event, nil)

	booking, err := service.CreateBooking(ctx, CreateBookingInput{EventID: 2, UserID: 42, Tickets: 10, Tier: "casual"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
	mockBookingRepo.AssertNotCalled(t, "CreateReserved", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_Rejections(t *testing.T) {
	closed := flatEvent()
	closed.Status = domain.EventStatusCompleted

	tests := []struct {
		name    string
		input   CreateBookingInput
		event   *domain.Event
		loadErr error
		wantErr error
	}{
		{name: "zero tickets", input: CreateBookingInput{EventID: 1, Tickets: 0}, wantErr: domain.ErrInvalidTicketCount},
		{name: "eleven tickets", input: CreateBookingInput{EventID: 1, Tickets: 11}, wantErr: domain.ErrInvalidTicketCount},
		{name: "unknown event", input: CreateBookingInput{EventID: 1, Tickets: 1}, loadErr: domain.ErrEventNotFound, wantErr: domain.ErrEventNotFound},
		{name: "closed event", input: CreateBookingInput{EventID: 1, Tickets: 1}, event: closed, wantErr: domain.ErrEventClosed},
		{name: "unknown tier", input: CreateBookingInput{EventID: 1, Tickets: 1, Tier: "GOLD"}, event: flatEvent(), wantErr: domain.ErrInvalidTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockBookingRepo := &MockBookingRepository{}
			mockEventRepo := &MockEventRepository{}
			notifier := &captureNotifier{}
			service := newTestService(mockBookingRepo, mockEventRepo, notifier)

			if tt.event != nil || tt.loadErr != nil {
				mockEventRepo.On("GetByID", ctx, tt.input.EventID).Return(tt.event, tt.loadErr).Once()
			}

			_, err := service.CreateBooking(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			mockBookingRepo.AssertNotCalled(t, "CreateReserved", mock.Anything, mock.Anything)
			assert.Empty(t, notifier.all())
		})
	}
}

func TestBookingService_CreateBooking_CapacityExceeded(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	notifier := &captureNotifier{}
	service := newTestService(mockBookingRepo, mockEventRepo, notifier)

	mockEventRepo.On("GetByID", ctx, int64(1)).Return(flatEvent(), nil).Once()
	mockBookingRepo.On("CreateReserved", ctx, mock.Anything).
		Return(&domain.CapacityExceededError{EventID: 1, Requested: 5, Available: 3}).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{EventID: 1, UserID: 42, Tickets: 5})

	assert.Nil(t, booking)
	capErr, ok := domain.IsCapacityError(err)
	require.True(t, ok)
	assert.Equal(t, 3, capErr.Available)
	assert.Empty(t, notifier.all())
}

func TestBookingService_CreateBooking_StoreFailure(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	service := newTestService(mockBookingRepo, mockEventRepo, &captureNotifier{})

	mockEventRepo.On("GetByID", ctx, int64(1)).Return(flatEvent(), nil).Once()
	mockBookingRepo.On("CreateReserved", ctx, mock.Anything).Return(assert.AnError).Once()

	_, err := service.CreateBooking(ctx, CreateBookingInput{EventID: 1, UserID: 42, Tickets: 1})
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBookingService_CancelBooking(t *testing.T) {
	tests := []struct {
		name    string
		session domain.Session
		status  domain.BookingStatus
		wantErr error
	}{
		{name: "owner cancels pending", session: owner, status: domain.BookingStatusPending},
		{name: "admin cancels paid", session: admin, status: domain.BookingStatusPaid},
		{name: "stranger is forbidden", session: other, status: domain.BookingStatusPending, wantErr: domain.ErrForbidden},
		{name: "already cancelled", session: owner, status: domain.BookingStatusCancelled, wantErr: domain.ErrAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockBookingRepo := &MockBookingRepository{}
			mockEventRepo := &MockEventRepository{}
			service := newTestService(mockBookingRepo, mockEventRepo, &captureNotifier{})

			current := &domain.Booking{ID: 5, EventID: 1, UserID: 42, Tickets: 2, Status: tt.status}
			mockBookingRepo.On("GetByID", ctx, int64(5)).Return(current, nil).Once()
			if tt.wantErr == nil {
				cancelled := *current
				cancelled.Status = domain.BookingStatusCancelled
				mockBookingRepo.On("Transition", ctx, repository.StatusChange{
					BookingID: 5, EventID: 1, From: tt.status, To: domain.BookingStatusCancelled, Delta: -2,
				}).Return(&cancelled, nil).Once()
			}

			booking, err := service.CancelBooking(ctx, tt.session, 5)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mockBookingRepo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
			mockBookingRepo.AssertExpectations(t)
		})
	}
}

func TestBookingService_CancelBooking_NotFound(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	service := newTestService(mockBookingRepo, &MockEventRepository{}, &captureNotifier{})

	mockBookingRepo.On("GetByID", ctx, int64(5)).Return(nil, domain.ErrBookingNotFound).Once()

	_, err := service.CancelBooking(ctx, owner, 5)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingService_UpdatePaymentStatus_PaidNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	notifier := &captureNotifier{}
	service := newTestService(mockBookingRepo, mockEventRepo, notifier)

	pending := &domain.Booking{ID: 5, EventID: 1, UserID: 42, Tickets: 2, TicketNumber: "TKT-5", Status: domain.BookingStatusPending}
	paid := *pending
	paid.Status = domain.BookingStatusPaid

	mockBookingRepo.On("GetByID", ctx, int64(5)).Return(pending, nil).Once()
	mockBookingRepo.On("Transition", ctx, repository.StatusChange{
		BookingID: 5, EventID: 1, From: domain.BookingStatusPending, To: domain.BookingStatusPaid,
	}).Return(&paid, nil).Once()

	updated, err := service.UpdatePaymentStatus(ctx, admin, 5, domain.BookingStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaid, updated.Status)

	// A second request finds the booking already paid.
	mockBookingRepo.On("GetByID", ctx, int64(5)).Return(&paid, nil).Once()
	_, err = service.UpdatePaymentStatus(ctx, admin, 5, domain.BookingStatusPaid)
	require.NoError(t, err)

	sent := notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, domain.NotificationPaymentConfirmed, sent[0].Type)
	assert.Equal(t, domain.NotificationTicketReady, sent[1].Type)
	mockBookingRepo.AssertExpectations(t)
	mockEventRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBookingService_UpdatePaymentStatus_Rejections(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	service := newTestService(mockBookingRepo, &MockEventRepository{}, &captureNotifier{})

	_, err := service.UpdatePaymentStatus(ctx, owner, 5, domain.BookingStatusPaid)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = service.UpdatePaymentStatus(ctx, admin, 5, domain.BookingStatus("SHIPPED"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	mockBookingRepo.On("GetByID", ctx, int64(5)).
		Return(&domain.Booking{ID: 5, EventID: 1, Status: domain.BookingStatusRefunded}, nil).Once()
	_, err = service.UpdatePaymentStatus(ctx, admin, 5, domain.BookingStatusPaid)
	var transition *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)

	mockBookingRepo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
}

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	service := newTestService(mockBookingRepo, &MockEventRepository{}, &captureNotifier{})

	stored := &domain.Booking{ID: 5, UserID: 42}
	mockBookingRepo.On("GetByID", ctx, int64(5)).Return(stored, nil)

	got, err := service.GetBooking(ctx, owner, 5)
	require.NoError(t, err)
	assert.Same(t, stored, got)

	_, err = service.GetBooking(ctx, admin, 5)
	assert.NoError(t, err)

	_, err = service.GetBooking(ctx, other, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_ListEventBookings(t *testing.T) {
	ctx := context.Background()
	mockBookingRepo := &MockBookingRepository{}
	mockEventRepo := &MockEventRepository{}
	service := newTestService(mockBookingRepo, mockEventRepo, &captureNotifier{})

	mockEventRepo.On("GetByID", ctx, int64(1)).Return(flatEvent(), nil)
	mockBookingRepo.On("ListByEvent", ctx, int64(1)).Return([]domain.Booking{{ID: 1}, {ID: 2}}, nil).Once()

	organizer := domain.Session{UserID: 10, Role: domain.RoleOrganizer}
	bookings, err := service.ListEventBookings(ctx, organizer, 1)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	_, err = service.ListEventBookings(ctx, owner, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockBookingRepo.AssertExpectations(t)
}

func TestBookingService_GetAvailableCapacity(t *testing.T) {
	ctx := context.Background()
	mockEventRepo := &MockEventRepository{}
	service := newTestService(&MockBookingRepository{}, mockEventRepo, &captureNotifier{})

	event := flatEvent()
	event.SoldTickets = 98
	mockEventRepo.On("GetByID", ctx, int64(1)).Return(event, nil).Once()

	available, err := service.GetAvailableCapacity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}
