package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/bootstrap"
	"github.com/Domenick1991/eventbooking/internal/cache"
	"github.com/Domenick1991/eventbooking/internal/logger"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/events"
	"github.com/Domenick1991/eventbooking/internal/telemetry"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ValidateServing(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logg.Fatal("init telemetry", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logg.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	publisher, closePublisher := bootstrap.NewPublisher(cfg.Kafka, logg)
	defer closePublisher()

	var checks []bootstrap.DependencyCheck
	if checker, ok := publisher.(bootstrap.ConnectionChecker); ok {
		checks = append(checks, bootstrap.DependencyCheck{Name: "kafka", Check: checker.CheckConnection})
	}

	dispatcher := notify.NewDispatcher(publisher, logg, notify.Options{
		QueueSize: cfg.Booking.NotifyQueueSize,
		Workers:   cfg.Booking.NotifyWorkers,
		Timeout:   time.Duration(cfg.Booking.NotifyTimeoutSecs) * time.Second,
		Events:    store.Events,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := dispatcher.Close(closeCtx); err != nil {
			logg.Warn("notification queue not drained", zap.Error(err))
		}
	}()

	eventOpts := []events.EventServiceOption{events.WithLogger(logg)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.EventsCacheTTL)*time.Second)
		defer redisCache.Close()
		eventOpts = append(eventOpts, events.WithCache(redisCache))
		checks = append(checks, bootstrap.DependencyCheck{Name: "redis", Check: redisCache.Ping})
	}
	bootstrap.CheckDependencies(ctx, logg, 5*time.Second, checks...)

	svc := bootstrap.Services{
		Bookings: booking.NewBookingService(store.Bookings, store.Events, dispatcher, booking.WithLogger(logg)),
		Events:   events.NewEventService(store.Events, dispatcher, eventOpts...),
	}

	if err := bootstrap.Run(ctx, cfg, logg, svc); err != nil {
		logg.Error("server error", zap.Error(err))
	}
}
