// Package notify delivers booking notifications off the caller's path.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

var ErrDispatcherClosed = errors.New("notification dispatcher is closed")

type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Notifier accepts notifications without blocking. Delivery is best effort.
type Notifier interface {
	Notify(n domain.Notification)
}

// EventReader looks up the event a notification refers to.
type EventReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
}

type Options struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
	// Events, when set, fills in the event name of notifications queued without one.
	Events EventReader
}

// Dispatcher is a bounded queue drained by a fixed set of workers. When the queue is full new
// notifications are dropped and logged.
type Dispatcher struct {
	publisher Publisher
	events    EventReader
	log       *zap.Logger
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Notification
	wg     sync.WaitGroup
}

func NewDispatcher(publisher Publisher, log *zap.Logger, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		publisher: publisher,
		events:    opts.Events,
		log:       log.Named("notify"),
		timeout:   opts.Timeout,
		queue:     make(chan domain.Notification, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) Notify(n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("notification dropped, dispatcher closed", fields(n)...)
		return
	}
	select {
	case d.queue <- n:
	default:
		d.log.Warn("notification dropped, queue full", fields(n)...)
	}
}

// Close stops accepting notifications and waits for the queued ones to be published or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.publish(n)
	}
}

func (d *Dispatcher) publish(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if n.EventName == "" && n.EventID != 0 && d.events != nil {
		if event, err := d.events.GetByID(ctx, n.EventID); err == nil {
			n.EventName = event.Name
		} else {
			d.log.Warn("event lookup for notification failed", append(fields(n), zap.Error(err))...)
		}
	}

	if err := d.publisher.Publish(ctx, n); err != nil {
		d.log.Error("failed to publish notification", append(fields(n), zap.Error(err))...)
		return
	}
	d.log.Debug("notification published", fields(n)...)
}

func fields(n domain.Notification) []zap.Field {
	return []zap.Field{
		zap.String("type", string(n.Type)),
		zap.String("audience", string(n.Audience)),
		zap.Int64("event_id", n.EventID),
		zap.Int64("booking_id", n.BookingID),
	}
}

// LogPublisher writes notifications to the log. It stands in for the broker when none is configured.
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, n domain.Notification) error {
	p.Log.Info("notification", append(fields(n), zap.Int64("user_id", n.UserID), zap.String("ticket_number", n.TicketNumber))...)
	return nil
}
