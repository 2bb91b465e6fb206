package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartstore-demo/internal/config"
	"github.com/nikolayk812/cartstore-demo/internal/migrations"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"github.com/nikolayk812/cartstore-demo/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newPostgresPersister).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// persisterFactory opens the cart slot named in cfg. The returned func
// releases its resources.
type persisterFactory func(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.CartBlobRepository, func(), error)

type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	openPersister persisterFactory
}

func newRootCmd(openPersister persisterFactory) *cobra.Command {
	a := &app{
		logger:        zap.NewNop(),
		openPersister: openPersister,
	}

	rootCmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Inspect and modify a stored shopping cart",
		Long: `cartctl opens the cart stored in the configured slot, applies one
operation and writes the resulting cart back.

Lines are identified by product id plus optional color and size; adding
the same combination again merges quantities up to the line's max stock.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}
			a.cfg = cfg

			logger, err := cfg.Log.Logger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		a.newShowCmd(),
		a.newAddCmd(),
		a.newRemoveCmd(),
		a.newSetQtyCmd(),
		a.newClearCmd(),
		a.newPurgeCmd(),
		newKeyCmd(),
		a.newMigrateCmd(),
	)

	return rootCmd
}

func newPostgresPersister(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.CartBlobRepository, func(), error) {
	if err := requireDSN(cfg); err != nil {
		return nil, nil, err
	}

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(ctx, cfg.Database.DSN, logger); err != nil {
			return nil, nil, fmt.Errorf("migrations.Up: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	repo, err := repository.NewCartBlob(pool, cfg.Cart.Slot)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("repository.NewCartBlob: %w", err)
	}

	logger.Debug("cart slot opened", zap.String("slot", cfg.Cart.Slot))

	return repo, pool.Close, nil
}
