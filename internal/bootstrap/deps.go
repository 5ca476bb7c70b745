package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/repository"
)

type Store struct {
	Events   repository.EventRepository
	Bookings repository.BookingRepository
	close    func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects the configured database and makes sure its schema exists.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Store{
			Events:   repository.NewSQLiteEventRepository(db),
			Bookings: repository.NewSQLiteBookingRepository(db),
			close:    func() { db.Close() },
		}, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := repository.InitPostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Events:   repository.NewEventRepository(pool),
			Bookings: repository.NewBookingRepository(pool),
			close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// NewPublisher returns the Kafka producer, or a log-only publisher when no brokers are configured.
func NewPublisher(cfg config.KafkaConfig, log *zap.Logger) (notify.Publisher, func() error) {
	if len(cfg.Brokers) == 0 {
		log.Warn("no kafka brokers configured, notifications are only logged")
		return notify.LogPublisher{Log: log.Named("notify")}, func() error { return nil }
	}
	producer := kafka.NewProducer(cfg.Brokers, cfg.NotificationsTopic, log)
	return producer, producer.Close
}
