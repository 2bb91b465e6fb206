// Package cart keeps the authoritative list of cart lines, derives its
// totals and persists every change through a port.CartPersister.
package cart

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const (
	defaultSaveMaxTries        = 5
	defaultSaveInitialInterval = 100 * time.Millisecond
)

type options struct {
	logger              *zap.Logger
	unit                currency.Unit
	saveMaxTries        uint
	saveInitialInterval time.Duration
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCurrency sets the currency unit reported on Snapshot.Total.
func WithCurrency(unit currency.Unit) Option {
	return func(o *options) {
		o.unit = unit
	}
}

// WithSaveRetry bounds how often a failed save is attempted before the
// sequence is dropped.
func WithSaveRetry(maxTries uint, initialInterval time.Duration) Option {
	return func(o *options) {
		if maxTries > 0 {
			o.saveMaxTries = maxTries
		}
		if initialInterval > 0 {
			o.saveInitialInterval = initialInterval
		}
	}
}

// Store holds the cart lines. All operations are synchronous and never
// fail; each one persists the resulting line sequence in the background.
type Store struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	unit     currency.Unit

	writer *writer
	logger *zap.Logger
}

// New returns an empty store writing to persister.
func New(persister port.CartPersister, opts ...Option) *Store {
	o := options{
		logger:              zap.NewNop(),
		unit:                currency.USD,
		saveMaxTries:        defaultSaveMaxTries,
		saveInitialInterval: defaultSaveInitialInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		snapshot: domain.NewSnapshot(nil, o.unit),
		unit:     o.unit,
		writer:   newWriter(persister, o.logger, o.saveMaxTries, o.saveInitialInterval),
		logger:   o.logger,
	}
}

// Open returns a store populated from persister. A failed or malformed
// load yields an empty cart. The loaded lines are not written back.
func Open(ctx context.Context, persister port.CartPersister, opts ...Option) *Store {
	s := New(persister, opts...)

	lines, err := persister.Load(ctx)
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", zap.Error(err))
		return s
	}

	s.mu.Lock()
	s.snapshot = domain.NewSnapshot(lines, s.unit)
	s.mu.Unlock()

	return s
}

func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.NewSnapshot(s.snapshot.Lines, s.unit)
}

// AddItem merges quantity units of line into the cart. line.Quantity is
// ignored; a quantity below 1 counts as 1, as does a MaxStock below 1.
// The merged quantity never exceeds the MaxStock of the line first added
// under the same key.
func (s *Store) AddItem(line domain.CartLine, quantity int) domain.Snapshot {
	quantity = max(quantity, 1)
	line.MaxStock = max(line.MaxStock, 1)
	key := line.Key()

	return s.apply(func(lines []domain.CartLine) []domain.CartLine {
		if i := indexOf(lines, key); i >= 0 {
			lines[i].Quantity = min(lines[i].Quantity+quantity, lines[i].MaxStock)
			return lines
		}

		line.Quantity = min(quantity, line.MaxStock)
		return append(lines, line)
	})
}

func (s *Store) RemoveItem(productID int64, color, size string) domain.Snapshot {
	key := domain.KeyOf(productID, color, size)

	return s.apply(func(lines []domain.CartLine) []domain.CartLine {
		return slices.DeleteFunc(lines, func(l domain.CartLine) bool {
			return l.Key() == key
		})
	})
}

// UpdateQuantity sets the quantity of a line, clamped to [0, MaxStock].
// A clamped quantity of 0 removes the line.
func (s *Store) UpdateQuantity(productID int64, quantity int, color, size string) domain.Snapshot {
	key := domain.KeyOf(productID, color, size)

	return s.apply(func(lines []domain.CartLine) []domain.CartLine {
		i := indexOf(lines, key)
		if i < 0 {
			return lines
		}

		quantity = min(max(0, quantity), lines[i].MaxStock)
		if quantity == 0 {
			return slices.Delete(lines, i, i+1)
		}

		lines[i].Quantity = quantity
		return lines
	})
}

func (s *Store) ClearCart() domain.Snapshot {
	return s.apply(func([]domain.CartLine) []domain.CartLine {
		return nil
	})
}

// LoadCart replaces the cart with lines as given.
func (s *Store) LoadCart(lines []domain.CartLine) domain.Snapshot {
	return s.apply(func([]domain.CartLine) []domain.CartLine {
		return slices.Clone(lines)
	})
}

// Flush waits until every change made so far has been handed to the
// persister. It returns the save error if the latest cart could not be
// stored after all retries.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.wait(ctx)
}

// Close flushes pending changes and stops background persistence. Like
// Flush, it reports a dropped latest save.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.close(ctx)
}

// apply runs fn on a private copy of the lines, installs the result and
// queues it for persistence, all under one lock.
func (s *Store) apply(fn func([]domain.CartLine) []domain.CartLine) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := fn(slices.Clone(s.snapshot.Lines))
	s.snapshot = domain.NewSnapshot(lines, s.unit)
	s.writer.enqueue(s.snapshot.Lines)

	return domain.NewSnapshot(s.snapshot.Lines, s.unit)
}

func indexOf(lines []domain.CartLine, key domain.Key) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool {
		return l.Key() == key
	})
}
