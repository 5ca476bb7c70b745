package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/telemetry"
)

const eventColumns = `id, name, venue, organizer_id, capacity, sold_tickets, pricing_type, flat_price, vvip_price, vip_price, casual_price, starts_at, status, created_at, updated_at`

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Venue, &e.OrganizerID, &e.Capacity, &e.SoldTickets, &e.PricingType,
		&e.FlatPrice, &e.VVIPPrice, &e.VIPPrice, &e.CasualPrice, &e.StartsAt, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PGEventRepository) Create(ctx context.Context, event *domain.Event) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.pg.event.create")
	defer func() { telemetry.End(span, err) }()

	return r.db.QueryRow(ctx, `INSERT INTO events (name, venue, organizer_id, capacity, pricing_type, flat_price, vvip_price, vip_price, casual_price, starts_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, sold_tickets, created_at, updated_at`,
		event.Name, event.Venue, event.OrganizerID, event.Capacity, event.PricingType, event.FlatPrice,
		event.VVIPPrice, event.VIPPrice, event.CasualPrice, event.StartsAt, event.Status).
		Scan(&event.ID, &event.SoldTickets, &event.CreatedAt, &event.UpdatedAt)
}

func (r *PGEventRepository) GetByID(ctx context.Context, id int64) (_ *domain.Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.pg.event.get", attribute.Int64("event_id", id))
	defer func() { telemetry.End(span, err) }()

	return scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
}

func (r *PGEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *PGEventRepository) Update(ctx context.Context, event *domain.Event) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.pg.event.update", attribute.Int64("event_id", event.ID))
	defer func() { telemetry.End(span, err) }()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// holding the row lock, any reservation that got here first has committed its booking
	var capacity int
	if err := tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id=$1 FOR UPDATE`, event.ID).Scan(&capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}

	if capacity != event.Capacity {
		var booked bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE event_id=$1)`, event.ID).Scan(&booked); err != nil {
			return err
		}
		if booked {
			return domain.ErrCapacityLocked
		}
	}

	if err := tx.QueryRow(ctx, `UPDATE events
		SET name=$2, venue=$3, capacity=$4, pricing_type=$5, flat_price=$6, vvip_price=$7, vip_price=$8, casual_price=$9, starts_at=$10, status=$11, updated_at=now()
		WHERE id=$1
		RETURNING organizer_id, sold_tickets, created_at, updated_at`,
		event.ID, event.Name, event.Venue, event.Capacity, event.PricingType, event.FlatPrice,
		event.VVIPPrice, event.VIPPrice, event.CasualPrice, event.StartsAt, event.Status).
		Scan(&event.OrganizerID, &event.SoldTickets, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *PGEventRepository) Delete(ctx context.Context, id int64, now time.Time) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.pg.event.delete", attribute.Int64("event_id", id))
	defer func() { telemetry.End(span, err) }()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// the row lock orders us after any in-flight status change on this event's bookings
	var startsAt time.Time
	if err := tx.QueryRow(ctx, `SELECT starts_at FROM events WHERE id=$1 FOR UPDATE`, id).Scan(&startsAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}

	if !startsAt.Before(now) {
		var paid bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE event_id=$1 AND status=$2)`, id, domain.BookingStatusPaid).Scan(&paid); err != nil {
			return err
		}
		if paid {
			return domain.ErrEventHasPaidBookings
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *PGEventRepository) ExpireStartedBefore(ctx context.Context, deadline time.Time) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `UPDATE events SET status=$1, updated_at=now()
		WHERE status IN ($2, $3) AND starts_at <= $4
		RETURNING `+eventColumns,
		domain.EventStatusCompleted, domain.EventStatusScheduled, domain.EventStatusOngoing, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *e)
	}
	return expired, rows.Err()
}

var _ EventRepository = (*PGEventRepository)(nil)
