package bookings_service_api

import (
	"context"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/rpc"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
)

// Server implements rpc.BookingsServiceServer on top of the booking service.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) CreateBooking(ctx context.Context, req *rpc.CreateBookingRequest) (*rpc.Booking, error) {
	created, err := s.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		EventID: req.EventID,
		UserID:  rpc.SessionFromContext(ctx).UserID,
		Tickets: req.Tickets,
		Tier:    req.Tier,
	})
	if err != nil {
		return nil, err
	}
	return rpc.FromBooking(created), nil
}

func (s *Server) GetBooking(ctx context.Context, req *rpc.BookingIDRequest) (*rpc.Booking, error) {
	found, err := s.bookings.GetBooking(ctx, rpc.SessionFromContext(ctx), req.ID)
	if err != nil {
		return nil, err
	}
	return rpc.FromBooking(found), nil
}

func (s *Server) ListMyBookings(ctx context.Context, _ *rpc.Empty) (*rpc.ListBookingsResponse, error) {
	list, err := s.bookings.ListUserBookings(ctx, rpc.SessionFromContext(ctx).UserID)
	if err != nil {
		return nil, err
	}
	return rpc.FromBookings(list), nil
}

func (s *Server) CancelBooking(ctx context.Context, req *rpc.BookingIDRequest) (*rpc.Booking, error) {
	cancelled, err := s.bookings.CancelBooking(ctx, rpc.SessionFromContext(ctx), req.ID)
	if err != nil {
		return nil, err
	}
	return rpc.FromBooking(cancelled), nil
}

func (s *Server) UpdatePaymentStatus(ctx context.Context, req *rpc.UpdatePaymentStatusRequest) (*rpc.Booking, error) {
	status, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, err
	}
	updated, err := s.bookings.UpdatePaymentStatus(ctx, rpc.SessionFromContext(ctx), req.ID, status)
	if err != nil {
		return nil, err
	}
	return rpc.FromBooking(updated), nil
}

func (s *Server) GetAvailableCapacity(ctx context.Context, req *rpc.EventIDRequest) (*rpc.AvailabilityResponse, error) {
	available, err := s.bookings.GetAvailableCapacity(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &rpc.AvailabilityResponse{EventID: req.ID, Available: available}, nil
}

var _ rpc.BookingsServiceServer = (*Server)(nil)
