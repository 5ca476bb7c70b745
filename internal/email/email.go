package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

type Message struct {
	Audience domain.Audience
	UserID   int64
	Subject  string
	Body     string
}

// Render turns a notification into the text shown to its recipients.
func Render(n domain.Notification) Message {
	m := Message{Audience: n.Audience, UserID: n.UserID}
	switch n.Type {
	case domain.NotificationPaymentConfirmed:
		m.Subject = "Payment confirmed"
		m.Body = fmt.Sprintf("Your payment of %s for %d ticket(s) to %s has been confirmed.", formatAmount(n.Amount), n.Tickets, n.EventName)
	case domain.NotificationTicketReady:
		m.Subject = "Your ticket is ready"
		m.Body = fmt.Sprintf("Ticket %s for %s is ready.", n.TicketNumber, n.EventName)
	case domain.NotificationNewBooking:
		m.Subject = "New booking"
		m.Body = fmt.Sprintf("User %d booked %d ticket(s) for %s (ticket %s).", n.UserID, n.Tickets, n.EventName, n.TicketNumber)
	case domain.NotificationBookingApproved:
		m.Subject = "Booking approved"
		m.Body = fmt.Sprintf("Your booking %s for %s is active again.", n.TicketNumber, n.EventName)
	case domain.NotificationEventExpired:
		m.Subject = "Event finished"
		m.Body = fmt.Sprintf("Your event %s has started and is now closed for booking. %d ticket(s) were sold.", n.EventName, n.Tickets)
	case domain.NotificationNewEvent:
		m.Subject = "New event"
		m.Body = fmt.Sprintf("%s is now open for booking.", n.EventName)
	default:
		m.Subject = string(n.Type)
		m.Body = fmt.Sprintf("Update for event %d.", n.EventID)
	}
	return m
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// Sender delivers rendered messages. Delivery is a structured log line until a mail gateway is wired.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log.Named("email")}
}

func (s *Sender) Send(_ context.Context, n domain.Notification) error {
	m := Render(n)
	s.log.Info("send email",
		zap.String("audience", string(m.Audience)),
		zap.Int64("user_id", m.UserID),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body))
	return nil
}
