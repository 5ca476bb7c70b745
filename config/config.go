package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Worker    WorkerConfig    `yaml:"worker"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// Path is the database file used by the sqlite driver.
	Path string `yaml:"path"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	EventsCacheTTL    int `yaml:"events_cache_ttl_seconds"`
	NotifyQueueSize   int `yaml:"notify_queue_size"`
	NotifyWorkers     int `yaml:"notify_workers"`
	NotifyTimeoutSecs int `yaml:"notify_timeout_seconds"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	TokenTTL  int    `yaml:"token_ttl_minutes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Service     string `yaml:"service"`
}

type TelemetryConfig struct {
	Enabled       bool    `yaml:"enabled"`
	ServiceName   string  `yaml:"service_name"`
	Environment   string  `yaml:"environment"`
	CollectorAddr string  `yaml:"collector_addr"`
	SampleRatio   float64 `yaml:"sample_ratio"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets secrets stay out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Booking.EventsCacheTTL <= 0 {
		c.Booking.EventsCacheTTL = 30
	}
	if c.Booking.NotifyQueueSize <= 0 {
		c.Booking.NotifyQueueSize = 1024
	}
	if c.Booking.NotifyWorkers <= 0 {
		c.Booking.NotifyWorkers = 4
	}
	if c.Booking.NotifyTimeoutSecs <= 0 {
		c.Booking.NotifyTimeoutSecs = 5
	}
	if c.Worker.ExpirationSweepMinutes <= 0 {
		c.Worker.ExpirationSweepMinutes = 5
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "booking-notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "eventbooking-worker"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "eventbooking"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Service == "" {
		c.Log.Service = "eventbooking"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Log.Service
	}
	if c.Telemetry.SampleRatio <= 0 {
		c.Telemetry.SampleRatio = 1
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("invalid config: database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// ValidateServing checks what the API process needs on top of LoadConfig. The worker never verifies
// tokens and skips it.
func (c *Config) ValidateServing() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}
	return nil
}
