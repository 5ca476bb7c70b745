package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/cache"
)

func TestCheckDependencies_WarnsAndContinues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	failed := CheckDependencies(context.Background(), zap.New(core), time.Second,
		DependencyCheck{Name: "ok", Check: func(context.Context) error { return nil }},
		DependencyCheck{Name: "broken", Check: func(context.Context) error { return errors.New("refused") }},
	)

	assert.Equal(t, 1, failed)
	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "broken", warnings[0].ContextMap()["dependency"])
	assert.Equal(t, 1, logs.FilterMessage("dependency ready").Len())
}

func TestCheckDependencies_AppliesTimeout(t *testing.T) {
	failed := CheckDependencies(context.Background(), zap.NewNop(), 10*time.Millisecond,
		DependencyCheck{Name: "slow", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	)
	assert.Equal(t, 1, failed)
}

func TestCheckDependencies_UnreachableBackends(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	publisher, closeFn := NewPublisher(config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, NotificationsTopic: "booking-notifications"}, log)
	defer closeFn()
	checker, ok := publisher.(ConnectionChecker)
	require.True(t, ok)

	redisCache := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Minute)
	defer redisCache.Close()

	failed := CheckDependencies(context.Background(), log, time.Second,
		DependencyCheck{Name: "kafka", Check: checker.CheckConnection},
		DependencyCheck{Name: "redis", Check: redisCache.Ping},
	)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 2, logs.FilterMessage("dependency not ready").Len())
}
