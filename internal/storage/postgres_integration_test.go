package storage

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jobper/jobper-dashboard/internal/migrations"
)

func setupTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("jobper_test"),
		tcpostgres.WithUsername("jobper"),
		tcpostgres.WithPassword("jobper"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("5432/tcp")).WithStartupTimeout(60*time.Second),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgres(connStr, newNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DB.Close() })

	require.NoError(t, migrations.Run(s.DB, "../../migrations"))
	return s
}

func TestPostgres_Contract(t *testing.T) {
	storeContract(t, setupTestPostgres(t))
}
