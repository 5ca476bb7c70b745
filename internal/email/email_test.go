package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		n       domain.Notification
		subject string
		body    string
	}{
		{
			name:    "payment confirmed",
			n:       domain.Notification{Type: domain.NotificationPaymentConfirmed, Amount: 10050, Tickets: 2, EventName: "Rock Fest"},
			subject: "Payment confirmed",
			body:    "Your payment of 100.50 for 2 ticket(s) to Rock Fest has been confirmed.",
		},
		{
			name:    "ticket ready",
			n:       domain.Notification{Type: domain.NotificationTicketReady, TicketNumber: "TKT-1", EventName: "Rock Fest"},
			subject: "Your ticket is ready",
			body:    "Ticket TKT-1 for Rock Fest is ready.",
		},
		{
			name:    "new event",
			n:       domain.Notification{Type: domain.NotificationNewEvent, EventName: "Opera Gala"},
			subject: "New event",
			body:    "Opera Gala is now open for booking.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Render(tt.n)
			assert.Equal(t, tt.subject, m.Subject)
			assert.Equal(t, tt.body, m.Body)
		})
	}
}

func TestSender_Send(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sender := NewSender(zap.New(core))

	err := sender.Send(context.Background(), domain.Notification{
		Type:     domain.NotificationBookingApproved,
		Audience: domain.AudienceUser,
		UserID:   42,
	})

	assert.NoError(t, err)
	entries := logs.FilterMessage("send email").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Booking approved", entries[0].ContextMap()["subject"])
		assert.Equal(t, int64(42), entries[0].ContextMap()["user_id"])
	}
}
