package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT    NOT NULL,
	venue         TEXT    NOT NULL DEFAULT '',
	organizer_id  INTEGER NOT NULL,
	capacity      INTEGER NOT NULL CHECK (capacity > 0),
	sold_tickets  INTEGER NOT NULL DEFAULT 0,
	pricing_type  TEXT    NOT NULL,
	flat_price    INTEGER NOT NULL DEFAULT 0,
	vvip_price    INTEGER NOT NULL DEFAULT 0,
	vip_price     INTEGER NOT NULL DEFAULT 0,
	casual_price  INTEGER NOT NULL DEFAULT 0,
	starts_at     INTEGER NOT NULL,
	status        TEXT    NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	CHECK (sold_tickets >= 0 AND sold_tickets <= capacity)
);

CREATE TABLE IF NOT EXISTS bookings (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id       INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id        INTEGER NOT NULL,
	tickets        INTEGER NOT NULL CHECK (tickets BETWEEN 1 AND 10),
	tier           TEXT    NOT NULL,
	total_amount   INTEGER NOT NULL,
	ticket_number  TEXT    NOT NULL UNIQUE,
	status         TEXT    NOT NULL,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS bookings_event_status_idx ON bookings (event_id, status);
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id);
`

// OpenSQLite opens (creating if needed) a SQLite database file and applies the schema.
// Times are stored as unix nanoseconds.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single connection serialises writers and avoids "database is locked"
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

type SQLiteEventRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db, now: time.Now}
}

func scanSQLiteEvent(row rowScanner) (*domain.Event, error) {
	var (
		e                             domain.Event
		startsAt, createdAt, updateAt int64
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Venue, &e.OrganizerID, &e.Capacity, &e.SoldTickets, &e.PricingType,
		&e.FlatPrice, &e.VVIPPrice, &e.VIPPrice, &e.CasualPrice, &startsAt, &e.Status, &createdAt, &updateAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	e.StartsAt, e.CreatedAt, e.UpdatedAt = fromUnix(startsAt), fromUnix(createdAt), fromUnix(updateAt)
	return &e, nil
}

func (r *SQLiteEventRepository) Create(ctx context.Context, event *domain.Event) error {
	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO events (name, venue, organizer_id, capacity, pricing_type, flat_price, vvip_price, vip_price, casual_price, starts_at, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Name, event.Venue, event.OrganizerID, event.Capacity, string(event.PricingType), event.FlatPrice,
		event.VVIPPrice, event.VIPPrice, event.CasualPrice, toUnix(event.StartsAt), string(event.Status), toUnix(now), toUnix(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	event.ID, event.SoldTickets, event.CreatedAt, event.UpdatedAt = id, 0, now, now
	return nil
}

func (r *SQLiteEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return scanSQLiteEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id=?`, id))
}

func (r *SQLiteEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) Update(ctx context.Context, event *domain.Event) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events
		SET name=?, venue=?, capacity=?, pricing_type=?, flat_price=?, vvip_price=?, vip_price=?, casual_price=?, starts_at=?, status=?, updated_at=?
		WHERE id=? AND (capacity=? OR NOT EXISTS (SELECT 1 FROM bookings WHERE event_id=?))`,
		event.Name, event.Venue, event.Capacity, string(event.PricingType), event.FlatPrice, event.VVIPPrice,
		event.VIPPrice, event.CasualPrice, toUnix(event.StartsAt), string(event.Status), toUnix(r.now()),
		event.ID, event.Capacity, event.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, event.ID); err != nil {
			return err
		}
		return domain.ErrCapacityLocked
	}

	stored, err := r.GetByID(ctx, event.ID)
	if err != nil {
		return err
	}
	*event = *stored
	return nil
}

func (r *SQLiteEventRepository) Delete(ctx context.Context, id int64, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var startsAt int64
	if err := tx.QueryRowContext(ctx, `SELECT starts_at FROM events WHERE id=?`, id).Scan(&startsAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}

	if !fromUnix(startsAt).Before(now) {
		var paid bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE event_id=? AND status=?)`, id, string(domain.BookingStatusPaid)).Scan(&paid); err != nil {
			return err
		}
		if paid {
			return domain.ErrEventHasPaidBookings
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteEventRepository) ExpireStartedBefore(ctx context.Context, deadline time.Time) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `UPDATE events SET status=?, updated_at=?
		WHERE status IN (?, ?) AND starts_at <= ?
		RETURNING `+eventColumns,
		string(domain.EventStatusCompleted), toUnix(r.now()), string(domain.EventStatusScheduled), string(domain.EventStatusOngoing), toUnix(deadline))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Event
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *e)
	}
	return expired, rows.Err()
}

type SQLiteBookingRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteBookingRepository(db *sql.DB) *SQLiteBookingRepository {
	return &SQLiteBookingRepository{db: db, now: time.Now}
}

func scanSQLiteBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                    domain.Booking
		createdAt, updatedAt int64
	)
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.Tickets, &b.Tier, &b.TotalAmount, &b.TicketNumber, &b.Status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b.CreatedAt, b.UpdatedAt = fromUnix(createdAt), fromUnix(updatedAt)
	return &b, nil
}

func sqliteReserve(ctx context.Context, tx *sql.Tx, eventID int64, delta int, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE events SET sold_tickets = sold_tickets + ?, updated_at = ?
		WHERE id = ? AND sold_tickets + ? <= capacity`, delta, toUnix(now), eventID, delta)
	if err != nil {
		return fmt.Errorf("failed to update event capacity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var capacity, sold int
	if err := tx.QueryRowContext(ctx, `SELECT capacity, sold_tickets FROM events WHERE id=?`, eventID).Scan(&capacity, &sold); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}
	return &domain.CapacityExceededError{EventID: eventID, Requested: delta, Available: max(capacity-sold, 0)}
}

func (r *SQLiteBookingRepository) CreateReserved(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UTC()
	if err := sqliteReserve(ctx, tx, booking.EventID, booking.Tickets, now); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO bookings (event_id, user_id, tickets, tier, total_amount, ticket_number, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.EventID, booking.UserID, booking.Tickets, string(booking.Tier), booking.TotalAmount, booking.TicketNumber,
		string(booking.Status), toUnix(now), toUnix(now))
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	booking.ID, booking.CreatedAt, booking.UpdatedAt = id, now, now
	return nil
}

func (r *SQLiteBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanSQLiteBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=?`, id))
}

func (r *SQLiteBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *SQLiteBookingRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE event_id=? ORDER BY created_at, id`, eventID)
}

func (r *SQLiteBookingRepository) list(ctx context.Context, query string, arg int64) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanSQLiteBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *SQLiteBookingRepository) Transition(ctx context.Context, change StatusChange) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UTC()
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status=?, updated_at=? WHERE id=? AND event_id=? AND status=?`,
		string(change.To), toUnix(now), change.BookingID, change.EventID, string(change.From))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := scanSQLiteBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=?`, change.BookingID)); err != nil {
			return nil, err
		}
		return nil, domain.ErrStaleBooking
	}

	if change.Delta != 0 {
		if err := sqliteReserve(ctx, tx, change.EventID, change.Delta, now); err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return nil, domain.ErrBookingNotFound
			}
			return nil, err
		}
	}

	updated, err := scanSQLiteBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=?`, change.BookingID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return updated, nil
}

var (
	_ EventRepository   = (*SQLiteEventRepository)(nil)
	_ BookingRepository = (*SQLiteBookingRepository)(nil)
)
