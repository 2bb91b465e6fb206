// Package migrations applies the embedded SQL schema with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(ctx context.Context, dsn string, logger *zap.Logger) error {
	return run(ctx, dsn, logger, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// Down rolls back steps migrations.
func Down(ctx context.Context, dsn string, steps int, logger *zap.Logger) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	return run(ctx, dsn, logger, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

func run(ctx context.Context, dsn string, logger *zap.Logger, fn func(m *migrate.Migrate) error) error {
	if dsn == "" {
		return fmt.Errorf("dsn is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("migrations connection close", zap.Error(cerr))
		}
	}()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("conn.PingContext: %w", err)
	}

	driver, err := pgxv5.WithInstance(conn, &pgxv5.Config{})
	if err != nil {
		return fmt.Errorf("pgxv5.WithInstance: %w", err)
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("iofs.New: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithInstance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil {
			logger.Warn("migrations source close", zap.Error(sourceErr))
		}
		if dbErr != nil {
			logger.Warn("migrations database close", zap.Error(dbErr))
		}
	}()

	if err := fn(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database migrations up-to-date")
			return nil
		}
		return fmt.Errorf("migrate: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("database migrations applied", zap.String("version", "none"))
	case err != nil:
		return fmt.Errorf("m.Version: %w", err)
	default:
		logger.Info("database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	return nil
}
