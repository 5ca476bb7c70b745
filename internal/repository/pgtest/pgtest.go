// Package pgtest starts a throwaway Postgres for tests that need the real store.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Domenick1991/eventbooking/internal/repository"
)

// DSNEnv points the tests at an existing database instead of a container.
const DSNEnv = "TEST_POSTGRES_DSN"

var (
	once     sync.Once
	dsn      string
	startErr error
)

// NewPool returns a pool on a migrated database shared by every test in the process. The container is
// started on first use and reaped when the test binary exits. Tests are skipped in -short mode and when
// no Docker daemon is reachable.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in short mode")
	}

	local := os.Getenv(DSNEnv)
	if local == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		dsn = local
		if dsn == "" {
			dsn, startErr = startContainer(ctx)
			if startErr != nil {
				return
			}
		}
		startErr = migrate(ctx, dsn)
	})
	require.NoError(t, startErr)

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func startContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "booking",
			"POSTGRES_PASSWORD": "booking",
			"POSTGRES_DB":       "eventbooking",
		},
		// the entrypoint restarts the server once after init
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgres://booking:booking@%s:%s/eventbooking?sslmode=disable", host, port.Port()), nil
}

func migrate(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	return repository.InitPostgresSchema(ctx, pool)
}
