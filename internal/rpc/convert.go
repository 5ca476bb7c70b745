package rpc

import (
	"fmt"
	"time"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

func FromBooking(b *domain.Booking) *Booking {
	if b == nil {
		return nil
	}
	return &Booking{
		ID:           b.ID,
		EventID:      b.EventID,
		UserID:       b.UserID,
		Tickets:      b.Tickets,
		Tier:         string(b.Tier),
		TotalAmount:  b.TotalAmount,
		TicketNumber: b.TicketNumber,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

func FromBookings(list []domain.Booking) *ListBookingsResponse {
	resp := &ListBookingsResponse{Bookings: make([]*Booking, 0, len(list))}
	for i := range list {
		resp.Bookings = append(resp.Bookings, FromBooking(&list[i]))
	}
	return resp
}

func FromEvent(e *domain.Event) *Event {
	if e == nil {
		return nil
	}
	return &Event{
		ID:          e.ID,
		Name:        e.Name,
		Venue:       e.Venue,
		OrganizerID: e.OrganizerID,
		Capacity:    e.Capacity,
		Available:   e.Available(),
		PricingType: string(e.PricingType),
		FlatPrice:   e.FlatPrice,
		VVIPPrice:   e.VVIPPrice,
		VIPPrice:    e.VIPPrice,
		CasualPrice: e.CasualPrice,
		StartsAt:    e.StartsAt.Format(time.RFC3339),
		Status:      string(e.Status),
	}
}

// StartTime parses StartsAt. A malformed value is a validation error.
func (f *EventFields) StartTime() (time.Time, error) {
	if f.StartsAt == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, f.StartsAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: starts_at must be RFC 3339", domain.ErrInvalidEvent)
	}
	return t, nil
}
