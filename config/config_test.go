package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8081"
database:
  host: db
  port: 5432
  user: booking
  password: secret
  name: events
kafka:
  brokers: ["kafka:9092"]
auth:
  jwt_secret: s3cr3t
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=db port=5432 user=booking password=secret dbname=events sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "booking-notifications", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, 4, cfg.Booking.NotifyWorkers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_PASSWORD", "env-pass")
	path := writeConfig(t, "database:\n  password: file-pass\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "env-pass", cfg.Database.Password)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "sqlite without path", body: "database:\n  driver: sqlite\nauth:\n  jwt_secret: x\n"},
		{name: "unknown driver", body: "database:\n  driver: oracle\nauth:\n  jwt_secret: x\n"},
		{name: "malformed yaml", body: "http: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_NonPositiveIntervalsFallBackToDefaults(t *testing.T) {
	path := writeConfig(t, "worker:\n  expiration_sweep_minutes: -5\nbooking:\n  notify_workers: -1\n  notify_queue_size: -10\n  events_cache_ttl_seconds: -1\n  notify_timeout_seconds: -2\nauth:\n  token_ttl_minutes: -60\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Worker.ExpirationSweepMinutes)
	assert.Equal(t, 4, cfg.Booking.NotifyWorkers)
	assert.Equal(t, 1024, cfg.Booking.NotifyQueueSize)
	assert.Equal(t, 30, cfg.Booking.EventsCacheTTL)
	assert.Equal(t, 5, cfg.Booking.NotifyTimeoutSecs)
	assert.Equal(t, 60, cfg.Auth.TokenTTL)
}

func TestValidateServing_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := LoadConfig(writeConfig(t, "http:\n  address: ':1'\n"))
	require.NoError(t, err, "the worker loads config without a jwt secret")
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Error(t, cfg.ValidateServing())

	cfg.Auth.JWTSecret = "s3cr3t"
	assert.NoError(t, cfg.ValidateServing())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
