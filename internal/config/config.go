// Package config loads cartctl settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const (
	EnvDatabaseDSN = "CARTCTL_DATABASE_DSN"
	EnvCartSlot    = "CARTCTL_CART_SLOT"

	defaultSlot                = "mogivo-cart"
	defaultCurrency            = "USD"
	defaultSaveMaxTries        = 5
	defaultSaveInitialInterval = 100 * time.Millisecond
	defaultLogLevel            = "info"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cart     CartConfig     `yaml:"cart"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type CartConfig struct {
	Slot                string        `yaml:"slot"`
	Currency            string        `yaml:"currency"`
	SaveMaxTries        uint          `yaml:"save_max_tries"`
	SaveInitialInterval time.Duration `yaml:"save_initial_interval"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cart.Slot == "" {
		c.Cart.Slot = defaultSlot
	}
	if c.Cart.Currency == "" {
		c.Cart.Currency = defaultCurrency
	}
	if c.Cart.SaveMaxTries == 0 {
		c.Cart.SaveMaxTries = defaultSaveMaxTries
	}
	if c.Cart.SaveInitialInterval == 0 {
		c.Cart.SaveInitialInterval = defaultSaveInitialInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseDSN); ok && strings.TrimSpace(v) != "" {
		c.Database.DSN = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvCartSlot); ok && strings.TrimSpace(v) != "" {
		c.Cart.Slot = strings.TrimSpace(v)
	}
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Cart.Slot) == "" {
		errs = append(errs, errors.New("cart.slot is empty"))
	}
	if _, err := currency.ParseISO(c.Cart.Currency); err != nil {
		errs = append(errs, fmt.Errorf("cart.currency[%s] is not valid: %w", c.Cart.Currency, err))
	}
	if c.Cart.SaveMaxTries == 0 {
		errs = append(errs, errors.New("cart.save_max_tries must be positive"))
	}
	if c.Cart.SaveInitialInterval < 0 {
		errs = append(errs, errors.New("cart.save_initial_interval is negative"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// Unit returns the parsed cart currency. Validate guarantees it parses.
func (c CartConfig) Unit() currency.Unit {
	return currency.MustParseISO(c.Currency)
}

// Logger builds a zap logger; verbose forces debug level.
func (c LogConfig) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("zapcore.ParseLevel: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("zc.Build: %w", err)
	}

	return logger, nil
}
