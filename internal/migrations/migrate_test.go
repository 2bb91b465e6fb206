package migrations_test

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/cartstore-demo/internal/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"
)

func TestUpDown(t *testing.T) {
	ctx := t.Context()

	container, err := postgres.Run(ctx, "postgres:17.6-alpine3.22", postgres.BasicWaitStrategies())
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)

	require.NoError(t, migrations.Up(ctx, dsn, logger))
	assert.True(t, tableExists(t, dsn))

	// second run is a no-op
	require.NoError(t, migrations.Up(ctx, dsn, logger))

	require.NoError(t, migrations.Down(ctx, dsn, 1, logger))
	assert.False(t, tableExists(t, dsn))
}

func TestRun_validation(t *testing.T) {
	ctx := t.Context()

	require.EqualError(t, migrations.Up(ctx, "", nil), "dsn is empty")
	require.EqualError(t, migrations.Down(ctx, "postgres://localhost/db", 0, nil), "steps must be positive, got 0")
}

func tableExists(t *testing.T, dsn string) bool {
	t.Helper()

	conn, err := pgx.Connect(t.Context(), dsn)
	require.NoError(t, err)
	defer conn.Close(t.Context())

	var exists bool
	err = conn.QueryRow(t.Context(), "SELECT to_regclass('public.cart_blobs') IS NOT NULL").Scan(&exists)
	require.NoError(t, err)

	return exists
}
