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
	"github.com/Domenick1991/eventbooking/internal/email"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/logger"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/service/events"
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

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()
	logg = logg.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		Workers:   1,
		Timeout:   time.Duration(cfg.Booking.NotifyTimeoutSecs) * time.Second,
		Events:    store.Events,
	})
	defer dispatcher.Close(context.Background())

	eventOpts := []events.EventServiceOption{events.WithLogger(logg)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.EventsCacheTTL)*time.Second)
		defer redisCache.Close()
		eventOpts = append(eventOpts, events.WithCache(redisCache))
		checks = append(checks, bootstrap.DependencyCheck{Name: "redis", Check: redisCache.Ping})
	}
	bootstrap.CheckDependencies(ctx, logg, 5*time.Second, checks...)
	eventService := events.NewEventService(store.Events, dispatcher, eventOpts...)

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logg)
		defer consumer.Close()

		emailSender := email.NewSender(logg)
		go func() {
			if err := consumer.Consume(ctx, emailSender.Send); err != nil {
				logg.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	for {
		select {
		case <-expireTicker.C:
			if _, err := eventService.ExpireEvents(ctx); err != nil {
				logg.Error("expire events", zap.Error(err))
			}
		case <-ctx.Done():
			logg.Info("shutting down")
			return
		}
	}
}
