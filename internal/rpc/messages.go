package rpc

type Empty struct{}

type Booking struct {
	ID           int64  `json:"id"`
	EventID      int64  `json:"event_id"`
	UserID       int64  `json:"user_id"`
	Tickets      int    `json:"tickets"`
	Tier         string `json:"tier"`
	TotalAmount  int64  `json:"total_amount"`
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type Event struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Venue       string `json:"venue"`
	OrganizerID int64  `json:"organizer_id"`
	Capacity    int    `json:"capacity"`
	Available   int    `json:"available"`
	PricingType string `json:"pricing_type"`
	FlatPrice   int64  `json:"flat_price,omitempty"`
	VVIPPrice   int64  `json:"vvip_price,omitempty"`
	VIPPrice    int64  `json:"vip_price,omitempty"`
	CasualPrice int64  `json:"casual_price,omitempty"`
	StartsAt    string `json:"starts_at"`
	Status      string `json:"status"`
}

type CreateBookingRequest struct {
	EventID int64  `json:"event_id"`
	Tickets int    `json:"tickets"`
	Tier    string `json:"tier"`
}

type BookingIDRequest struct {
	ID int64 `json:"id"`
}

type UpdatePaymentStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
}

type EventIDRequest struct {
	ID int64 `json:"id"`
}

type AvailabilityResponse struct {
	EventID   int64 `json:"event_id"`
	Available int   `json:"available"`
}

// EventFields are the caller-controlled fields of an event. StartsAt is RFC 3339.
type EventFields struct {
	Name        string `json:"name"`
	Venue       string `json:"venue"`
	OrganizerID int64  `json:"organizer_id"`
	Capacity    int    `json:"capacity"`
	PricingType string `json:"pricing_type"`
	FlatPrice   int64  `json:"flat_price"`
	VVIPPrice   int64  `json:"vvip_price"`
	VIPPrice    int64  `json:"vip_price"`
	CasualPrice int64  `json:"casual_price"`
	StartsAt    string `json:"starts_at"`
}

type UpdateEventRequest struct {
	ID     int64       `json:"id"`
	Fields EventFields `json:"fields"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}
