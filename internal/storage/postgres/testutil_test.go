package postgres

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schemaDir holds the journal scripts relative to this package.
const schemaDir = "../migrations/postgres"

// setupTestDB starts a throwaway PostgreSQL, applies the journal schema and
// registers teardown with t.Cleanup.
func setupTestDB(t *testing.T) *Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("market"),
		tcpostgres.WithUsername("market"),
		tcpostgres.WithPassword("market"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "start postgres")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn, WithMaxConns(4))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applySchema(t, ctx, pool)
	return pool
}

// applySchema runs every script in schemaDir in name order.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	dir := os.DirFS(schemaDir)
	names, err := fs.Glob(dir, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names, "no scripts in %s", schemaDir)

	for _, name := range names {
		body, err := fs.ReadFile(dir, name)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(body))
		require.NoError(t, err, "apply %s", name)
	}
}
