package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/telemetry"
)

const bookingColumns = `id, event_id, user_id, tickets, tier, total_amount, ticket_number, status, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.Tickets, &b.Tier, &b.TotalAmount, &b.TicketNumber, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// reserve adds delta tickets to the event's sold counter if they fit. The UPDATE takes the event row lock,
// so concurrent reservations on one event are applied one after another against the committed counter.
func reserve(ctx context.Context, tx pgx.Tx, eventID int64, delta int) error {
	var sold int
	err := tx.QueryRow(ctx, `UPDATE events SET sold_tickets = sold_tickets + $2, updated_at = now()
		WHERE id=$1 AND sold_tickets + $2 <= capacity
		RETURNING sold_tickets`, eventID, delta).Scan(&sold)
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var capacity int
	if err := tx.QueryRow(ctx, `SELECT capacity, sold_tickets FROM events WHERE id=$1`, eventID).Scan(&capacity, &sold); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}
	return &domain.CapacityExceededError{EventID: eventID, Requested: delta, Available: max(capacity-sold, 0)}
}

func (r *PGBookingRepository) CreateReserved(ctx context.Context, booking *domain.Booking) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.pg.booking.create_reserved",
		attribute.Int64("event_id", booking.EventID),
		attribute.Int("tickets", booking.Tickets),
	)
	defer func() { telemetry.End(span, err) }()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := reserve(ctx, tx, booking.EventID, booking.Tickets); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (event_id, user_id, tickets, tier, total_amount, ticket_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		booking.EventID, booking.UserID, booking.Tickets, booking.Tier, booking.TotalAmount, booking.TicketNumber, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGBookingRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE event_id=$1 ORDER BY created_at`, eventID)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, arg int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Transition(ctx context.Context, change StatusChange) (_ *domain.Booking, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.pg.booking.transition",
		attribute.Int64("booking_id", change.BookingID),
		attribute.String("from", string(change.From)),
		attribute.String("to", string(change.To)),
	)
	defer func() { telemetry.End(span, err) }()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// event row first, same lock order as CreateReserved and the event Delete
	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id=$1 FOR UPDATE`, change.EventID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	// the status compare-and-set runs before the counter moves, so a stale release never touches it
	updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$4, updated_at=now()
		WHERE id=$1 AND event_id=$2 AND status=$3
		RETURNING `+bookingColumns, change.BookingID, change.EventID, change.From, change.To))
	if errors.Is(err, domain.ErrBookingNotFound) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id=$1)`, change.BookingID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrStaleBooking
		}
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	if change.Delta != 0 {
		if err := reserve(ctx, tx, change.EventID, change.Delta); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
