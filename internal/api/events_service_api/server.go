package events_service_api

import (
	"context"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/rpc"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/events"
)

// Server implements rpc.EventsServiceServer.
type Server struct {
	events   events.EventUseCase
	bookings booking.BookingUseCase
}

func NewServer(events events.EventUseCase, bookings booking.BookingUseCase) *Server {
	return &Server{events: events, bookings: bookings}
}

func (s *Server) ListEvents(ctx context.Context, _ *rpc.Empty) (*rpc.ListEventsResponse, error) {
	list, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	resp := &rpc.ListEventsResponse{Events: make([]*rpc.Event, 0, len(list))}
	for i := range list {
		resp.Events = append(resp.Events, rpc.FromEvent(&list[i]))
	}
	return resp, nil
}

func (s *Server) GetEvent(ctx context.Context, req *rpc.EventIDRequest) (*rpc.Event, error) {
	event, err := s.events.GetEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return rpc.FromEvent(event), nil
}

func (s *Server) CreateEvent(ctx context.Context, req *rpc.EventFields) (*rpc.Event, error) {
	input, err := toEventInput(req)
	if err != nil {
		return nil, err
	}
	created, err := s.events.CreateEvent(ctx, rpc.SessionFromContext(ctx), input)
	if err != nil {
		return nil, err
	}
	return rpc.FromEvent(created), nil
}

func (s *Server) UpdateEvent(ctx context.Context, req *rpc.UpdateEventRequest) (*rpc.Event, error) {
	input, err := toEventInput(&req.Fields)
	if err != nil {
		return nil, err
	}
	updated, err := s.events.UpdateEvent(ctx, rpc.SessionFromContext(ctx), req.ID, input)
	if err != nil {
		return nil, err
	}
	return rpc.FromEvent(updated), nil
}

func (s *Server) DeleteEvent(ctx context.Context, req *rpc.EventIDRequest) (*rpc.Empty, error) {
	if err := s.events.DeleteEvent(ctx, rpc.SessionFromContext(ctx), req.ID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *Server) ListEventBookings(ctx context.Context, req *rpc.EventIDRequest) (*rpc.ListBookingsResponse, error) {
	list, err := s.bookings.ListEventBookings(ctx, rpc.SessionFromContext(ctx), req.ID)
	if err != nil {
		return nil, err
	}
	return rpc.FromBookings(list), nil
}

func toEventInput(f *rpc.EventFields) (events.EventInput, error) {
	startsAt, err := f.StartTime()
	if err != nil {
		return events.EventInput{}, err
	}
	return events.EventInput{
		Name:        f.Name,
		Venue:       f.Venue,
		OrganizerID: f.OrganizerID,
		Capacity:    f.Capacity,
		PricingType: domain.PricingType(f.PricingType),
		FlatPrice:   f.FlatPrice,
		VVIPPrice:   f.VVIPPrice,
		VIPPrice:    f.VIPPrice,
		CasualPrice: f.CasualPrice,
		StartsAt:    startsAt,
	}, nil
}

var _ rpc.EventsServiceServer = (*Server)(nil)
