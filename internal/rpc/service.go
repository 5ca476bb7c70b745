package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	BookingsServiceName = "eventbooking.v1.BookingsService"
	EventsServiceName   = "eventbooking.v1.EventsService"
)

type BookingsServiceServer interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, req *BookingIDRequest) (*Booking, error)
	ListMyBookings(ctx context.Context, req *Empty) (*ListBookingsResponse, error)
	CancelBooking(ctx context.Context, req *BookingIDRequest) (*Booking, error)
	UpdatePaymentStatus(ctx context.Context, req *UpdatePaymentStatusRequest) (*Booking, error)
	GetAvailableCapacity(ctx context.Context, req *EventIDRequest) (*AvailabilityResponse, error)
}

type EventsServiceServer interface {
	ListEvents(ctx context.Context, req *Empty) (*ListEventsResponse, error)
	GetEvent(ctx context.Context, req *EventIDRequest) (*Event, error)
	CreateEvent(ctx context.Context, req *EventFields) (*Event, error)
	UpdateEvent(ctx context.Context, req *UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, req *EventIDRequest) (*Empty, error)
	ListEventBookings(ctx context.Context, req *EventIDRequest) (*ListBookingsResponse, error)
}

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary builds the method descriptor for one request/response call on a service implemented by S.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(service, method)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var BookingsServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingsServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(BookingsServiceName, "CreateBooking", BookingsServiceServer.CreateBooking),
		unary(BookingsServiceName, "GetBooking", BookingsServiceServer.GetBooking),
		unary(BookingsServiceName, "ListMyBookings", BookingsServiceServer.ListMyBookings),
		unary(BookingsServiceName, "CancelBooking", BookingsServiceServer.CancelBooking),
		unary(BookingsServiceName, "UpdatePaymentStatus", BookingsServiceServer.UpdatePaymentStatus),
		unary(BookingsServiceName, "GetAvailableCapacity", BookingsServiceServer.GetAvailableCapacity),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventbooking/v1/bookings.json",
}

var EventsServiceDesc = grpc.ServiceDesc{
	ServiceName: EventsServiceName,
	HandlerType: (*EventsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(EventsServiceName, "ListEvents", EventsServiceServer.ListEvents),
		unary(EventsServiceName, "GetEvent", EventsServiceServer.GetEvent),
		unary(EventsServiceName, "CreateEvent", EventsServiceServer.CreateEvent),
		unary(EventsServiceName, "UpdateEvent", EventsServiceServer.UpdateEvent),
		unary(EventsServiceName, "DeleteEvent", EventsServiceServer.DeleteEvent),
		unary(EventsServiceName, "ListEventBookings", EventsServiceServer.ListEventBookings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventbooking/v1/events.json",
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&BookingsServiceDesc, srv)
}

func RegisterEventsServiceServer(s grpc.ServiceRegistrar, srv EventsServiceServer) {
	s.RegisterService(&EventsServiceDesc, srv)
}

// PublicMethods need no bearer token.
var PublicMethods = map[string]bool{
	fullMethod(EventsServiceName, "ListEvents"):              true,
	fullMethod(EventsServiceName, "GetEvent"):                true,
	fullMethod(BookingsServiceName, "GetAvailableCapacity"): true,
}
