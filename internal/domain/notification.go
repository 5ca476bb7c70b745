package domain

import (
	"strconv"
	"time"
)

type NotificationType string

const (
	NotificationPaymentConfirmed NotificationType = "PAYMENT_CONFIRMED"
	NotificationTicketReady      NotificationType = "TICKET_READY"
	NotificationNewBooking       NotificationType = "NEW_BOOKING"
	NotificationBookingApproved  NotificationType = "BOOKING_APPROVED"
	NotificationEventExpired     NotificationType = "EVENT_EXPIRED"
	NotificationNewEvent         NotificationType = "NEW_EVENT"
)

type Audience string

const (
	AudienceUser   Audience = "USER"
	AudienceAdmins Audience = "ADMINS"
	AudienceAll    Audience = "ALL"
)

type Notification struct {
	Type         NotificationType `json:"type"`
	Audience     Audience         `json:"audience"`
	UserID       int64            `json:"user_id,omitempty"`
	BookingID    int64            `json:"booking_id,omitempty"`
	EventID      int64            `json:"event_id"`
	EventName    string           `json:"event_name,omitempty"`
	TicketNumber string           `json:"ticket_number,omitempty"`
	Tickets      int              `json:"tickets,omitempty"`
	Amount       int64            `json:"amount,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// Key groups notifications of the same booking (or event) on one broker partition.
func (n Notification) Key() string {
	if n.TicketNumber != "" {
		return n.TicketNumber
	}
	return "event-" + strconv.FormatInt(n.EventID, 10)
}

func BookingNotification(t NotificationType, audience Audience, b *Booking, eventName string, at time.Time) Notification {
	return Notification{
		Type:         t,
		Audience:     audience,
		UserID:       b.UserID,
		BookingID:    b.ID,
		EventID:      b.EventID,
		EventName:    eventName,
		TicketNumber: b.TicketNumber,
		Tickets:      b.Tickets,
		Amount:       b.TotalAmount,
		OccurredAt:   at,
	}
}
