package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT        NOT NULL,
	venue         TEXT        NOT NULL DEFAULT '',
	organizer_id  BIGINT      NOT NULL,
	capacity      INTEGER     NOT NULL CHECK (capacity > 0),
	sold_tickets  INTEGER     NOT NULL DEFAULT 0,
	pricing_type  TEXT        NOT NULL,
	flat_price    BIGINT      NOT NULL DEFAULT 0,
	vvip_price    BIGINT      NOT NULL DEFAULT 0,
	vip_price     BIGINT      NOT NULL DEFAULT 0,
	casual_price  BIGINT      NOT NULL DEFAULT 0,
	starts_at     TIMESTAMPTZ NOT NULL,
	status        TEXT        NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (sold_tickets >= 0 AND sold_tickets <= capacity)
);

CREATE TABLE IF NOT EXISTS bookings (
	id             BIGSERIAL PRIMARY KEY,
	event_id       BIGINT      NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id        BIGINT      NOT NULL,
	tickets        INTEGER     NOT NULL CHECK (tickets BETWEEN 1 AND 10),
	tier           TEXT        NOT NULL,
	total_amount   BIGINT      NOT NULL,
	ticket_number  TEXT        NOT NULL UNIQUE,
	status         TEXT        NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_event_status_idx ON bookings (event_id, status);
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id);
`

func InitPostgresSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
