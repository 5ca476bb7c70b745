package capacity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/repository"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateReserved(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockStore) Transition(ctx context.Context, change repository.StatusChange) (*domain.Booking, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func TestLedger_TryReserve(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	ledger := NewLedger(store, &MockEventReader{})
	booking := &domain.Booking{EventID: 1, Tickets: 2}

	store.On("CreateReserved", ctx, booking).Return(nil).Once()
	assert.NoError(t, ledger.TryReserve(ctx, booking))

	capErr := &domain.CapacityExceededError{EventID: 1, Requested: 2, Available: 1}
	store.On("CreateReserved", ctx, booking).Return(capErr).Once()
	err := ledger.TryReserve(ctx, booking)
	got, ok := domain.IsCapacityError(err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Available)

	store.On("CreateReserved", ctx, booking).Return(assert.AnError).Once()
	err = ledger.TryReserve(ctx, booking)
	var pe *domain.PersistenceError
	assert.ErrorAs(t, err, &pe)

	store.AssertExpectations(t)
}

func TestLedger_Release(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	ledger := NewLedger(store, &MockEventReader{})
	booking := &domain.Booking{ID: 3, EventID: 1, Tickets: 4, Status: domain.BookingStatusPaid}

	released := *booking
	released.Status = domain.BookingStatusRefunded
	store.On("Transition", ctx, repository.StatusChange{
		BookingID: 3, EventID: 1, From: domain.BookingStatusPaid, To: domain.BookingStatusRefunded, Delta: -4,
	}).Return(&released, nil).Once()

	updated, err := ledger.Release(ctx, booking, domain.BookingStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusRefunded, updated.Status)
	store.AssertExpectations(t)
}

func TestLedger_Release_RejectsNonHoldingBooking(t *testing.T) {
	store := &MockStore{}
	ledger := NewLedger(store, &MockEventReader{})

	_, err := ledger.Release(context.Background(), &domain.Booking{Status: domain.BookingStatusCancelled}, domain.BookingStatusRefunded)
	var transition *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)
	store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
}

func TestLedger_Readmit(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	ledger := NewLedger(store, &MockEventReader{})
	booking := &domain.Booking{ID: 3, EventID: 1, Tickets: 2, Status: domain.BookingStatusCancelled}

	change := repository.StatusChange{
		BookingID: 3, EventID: 1, From: domain.BookingStatusCancelled, To: domain.BookingStatusPending, Delta: 2,
	}
	store.On("Transition", ctx, change).Return(nil, &domain.CapacityExceededError{EventID: 1, Requested: 2, Available: 0}).Once()

	_, err := ledger.Readmit(ctx, booking)
	capErr, ok := domain.IsCapacityError(err)
	require.True(t, ok)
	assert.Equal(t, 0, capErr.Available)

	_, err = ledger.Readmit(ctx, &domain.Booking{Status: domain.BookingStatusPaid})
	var transition *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)
	store.AssertExpectations(t)
}

func TestLedger_Available(t *testing.T) {
	ctx := context.Background()
	events := &MockEventReader{}
	ledger := NewLedger(&MockStore{}, events)

	events.On("GetByID", ctx, int64(1)).Return(&domain.Event{Capacity: 100, SoldTickets: 2}, nil).Once()
	available, err := ledger.Available(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 98, available)

	events.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrEventNotFound).Once()
	_, err = ledger.Available(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
