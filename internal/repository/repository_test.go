package repository_test

import (
	"context"
	"fmt"

	"github.com/nikolayk812/cartstore-demo/internal/migrations"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres runs a container with the schema applied by the same
// embedded migrations cartctl uses.
func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return postgresContainer, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := migrations.Up(ctx, connStr, nil); err != nil {
		return postgresContainer, "", fmt.Errorf("migrations.Up: %w", err)
	}

	return postgresContainer, connStr, nil
}
