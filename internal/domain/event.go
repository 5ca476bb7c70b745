package domain

import "time"

type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

type PricingType string

const (
	PricingFlat   PricingType = "FLAT"
	PricingTiered PricingType = "TIERED"
)

type Event struct {
	ID          int64
	Name        string
	Venue       string
	OrganizerID int64
	Capacity    int
	SoldTickets int
	PricingType PricingType
	FlatPrice   int64
	VVIPPrice   int64
	VIPPrice    int64
	CasualPrice int64
	StartsAt    time.Time
	Status      EventStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available is never negative; SoldTickets is kept within Capacity by the store.
func (e *Event) Available() int {
	if left := e.Capacity - e.SoldTickets; left > 0 {
		return left
	}
	return 0
}

func (e *Event) Expired(now time.Time) bool {
	return e.StartsAt.Before(now)
}

// Bookable reports whether new bookings may be taken for the event.
func (e *Event) Bookable() bool {
	return e.Status == EventStatusScheduled || e.Status == EventStatusOngoing
}

// Validate checks the fields a caller controls when creating or updating an event.
func (e *Event) Validate() error {
	if e.Name == "" {
		return invalidEvent("name is required")
	}
	if e.Capacity <= 0 {
		return invalidEvent("capacity must be positive")
	}
	if e.StartsAt.IsZero() {
		return invalidEvent("start time is required")
	}
	if e.FlatPrice < 0 || e.VVIPPrice < 0 || e.VIPPrice < 0 || e.CasualPrice < 0 {
		return invalidEvent("prices cannot be negative")
	}

	switch e.PricingType {
	case PricingFlat:
		if e.FlatPrice == 0 {
			return invalidEvent("flat price is required")
		}
	case PricingTiered:
		if e.VVIPPrice == 0 && e.VIPPrice == 0 && e.CasualPrice == 0 {
			return invalidEvent("at least one tier price is required")
		}
		// unset tiers fall back to the flat price, which then has to exist
		if (e.VVIPPrice == 0 || e.VIPPrice == 0 || e.CasualPrice == 0) && e.FlatPrice == 0 {
			return invalidEvent("flat price is required when a tier price is unset")
		}
		if e.VVIPPrice > 0 && e.VIPPrice > 0 && e.VVIPPrice < e.VIPPrice {
			return invalidEvent("VVIP price must not be lower than VIP price")
		}
		if e.VIPPrice > 0 && e.CasualPrice > 0 && e.VIPPrice < e.CasualPrice {
			return invalidEvent("VIP price must not be lower than casual price")
		}
		if e.VVIPPrice > 0 && e.CasualPrice > 0 && e.VVIPPrice < e.CasualPrice {
			return invalidEvent("VVIP price must not be lower than casual price")
		}
	default:
		return invalidEvent("unknown pricing type")
	}
	return nil
}
