package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// DialOptions select the JSON codec for every call on the connection.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{}))}
}

// ServerOptions select the JSON codec and the given interceptors.
func ServerOptions(interceptors ...grpc.UnaryServerInterceptor) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(interceptors...),
	}
}

// WithToken attaches a bearer token to outgoing calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, "Bearer "+token)
}

type BookingsClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingsClient(cc grpc.ClientConnInterface) *BookingsClient {
	return &BookingsClient{cc: cc}
}

func (c *BookingsClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*Booking, error) {
	out := new(Booking)
	if err := c.cc.Invoke(ctx, fullMethod(BookingsServiceName, "CreateBooking"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsClient) GetBooking(ctx context.Context, in *BookingIDRequest, opts ...grpc.CallOption) (*Booking, error) {
	out := new(Booking)
	if err := c.cc.Invoke(ctx, fullMethod(BookingsServiceName, "GetBooking"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsClient) ListMyBookings(ctx context.Context, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	out := new(ListBookingsResponse)
	if err := c.cc.Invoke(ctx, fullMethod(BookingsServiceName, "ListMyBookings"), &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsClient) CancelBooking(ctx context.Context, in *BookingIDRequest, opts ...grpc.CallOption) (*Booking, error) {
	out := new(Booking)
	if err := c.cc.Invoke(ctx, fullMethod(BookingsServiceName, "CancelBooking"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsClient) UpdatePaymentStatus(ctx context.Context, in *UpdatePaymentStatusRequest, opts ...grpc.CallOption) (*Booking, error) {
	out := new(Booking)
	if err := c.cc.Invoke(ctx, fullMethod(BookingsServiceName, "UpdatePaymentStatus"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingsClient) GetAvailableCapacity(ctx context.Context, in *EventIDRequest, opts ...grpc.CallOption) (*AvailabilityResponse, error) {
	out := new(AvailabilityResponse)
	if err := c.cc.Invoke(ctx, fullMethod(BookingsServiceName, "GetAvailableCapacity"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type EventsClient struct {
	cc grpc.ClientConnInterface
}

func NewEventsClient(cc grpc.ClientConnInterface) *EventsClient {
	return &EventsClient{cc: cc}
}

func (c *EventsClient) ListEvents(ctx context.Context, opts ...grpc.CallOption) (*ListEventsResponse, error) {
	out := new(ListEventsResponse)
	if err := c.cc.Invoke(ctx, fullMethod(EventsServiceName, "ListEvents"), &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EventsClient) GetEvent(ctx context.Context, in *EventIDRequest, opts ...grpc.CallOption) (*Event, error) {
	out := new(Event)
	if err := c.cc.Invoke(ctx, fullMethod(EventsServiceName, "GetEvent"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EventsClient) CreateEvent(ctx context.Context, in *EventFields, opts ...grpc.CallOption) (*Event, error) {
	out := new(Event)
	if err := c.cc.Invoke(ctx, fullMethod(EventsServiceName, "CreateEvent"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EventsClient) UpdateEvent(ctx context.Context, in *UpdateEventRequest, opts ...grpc.CallOption) (*Event, error) {
	out := new(Event)
	if err := c.cc.Invoke(ctx, fullMethod(EventsServiceName, "UpdateEvent"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EventsClient) DeleteEvent(ctx context.Context, in *EventIDRequest, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod(EventsServiceName, "DeleteEvent"), in, &Empty{}, opts...)
}

func (c *EventsClient) ListEventBookings(ctx context.Context, in *EventIDRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	out := new(ListBookingsResponse)
	if err := c.cc.Invoke(ctx, fullMethod(EventsServiceName, "ListEventBookings"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
