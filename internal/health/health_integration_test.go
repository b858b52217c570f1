//go:build integration

package health

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestChecker_Health_RealPostgres spins up an ephemeral Postgres container
// and asserts Checker reports it reachable, covering the one code path
// NewChecker(nil) can't: an actually-configured DATABASE_URL.
func TestChecker_Health_RealPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("roomrt"),
		postgres.WithUsername("roomrt"),
		postgres.WithPassword("roomrt"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	checker := NewChecker(pool)
	status := checker.Health(ctx)

	require.Equal(t, "ok", status.Status)
	require.Equal(t, "ok", status.DB)
}

func TestChecker_Health_Disabled(t *testing.T) {
	checker := NewChecker(nil)
	status := checker.Health(context.Background())
	require.Equal(t, "disabled", status.DB)
}
