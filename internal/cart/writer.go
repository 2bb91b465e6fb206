package cart

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"go.uber.org/zap"
)

// writer hands line sequences to a persister from a single goroutine.
// Only the newest unsent sequence is kept, so an older sequence is never
// saved after a newer one.
type writer struct {
	persister port.CartPersister
	logger    *zap.Logger

	maxTries        uint
	initialInterval time.Duration

	mu         sync.Mutex
	pending    []domain.CartLine
	hasPending bool

	// lastErr is the error of the most recent save if it was dropped.
	// Owned by the run goroutine.
	lastErr error

	wake  chan struct{}
	flush chan chan error
	stop  chan struct{}
	done  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
}

func newWriter(persister port.CartPersister, logger *zap.Logger, maxTries uint, initialInterval time.Duration) *writer {
	ctx, cancel := context.WithCancel(context.Background())

	w := &writer{
		persister:       persister,
		logger:          logger,
		maxTries:        maxTries,
		initialInterval: initialInterval,
		wake:            make(chan struct{}, 1),
		flush:           make(chan chan error),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		ctx:             ctx,
		cancel:          cancel,
	}

	go w.run()

	return w
}

// enqueue replaces any unsent sequence with lines. It never blocks.
func (w *writer) enqueue(lines []domain.CartLine) {
	w.mu.Lock()
	w.pending = slices.Clone(lines)
	w.hasPending = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)

	for {
		select {
		case <-w.wake:
			w.drain()
		case reply := <-w.flush:
			w.drain()
			reply <- w.lastErr
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if !w.hasPending {
			w.mu.Unlock()
			return
		}
		lines := w.pending
		w.pending, w.hasPending = nil, false
		w.mu.Unlock()

		w.save(lines)
	}
}

func (w *writer) save(lines []domain.CartLine) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialInterval

	attempt := 0
	_, err := backoff.Retry(w.ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, w.persister.Save(w.ctx, lines)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(w.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			w.logger.Warn("cart save failed, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Duration("next", next))
		}),
	)
	w.lastErr = err
	if err != nil {
		w.logger.Error("cart save dropped",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("lines", len(lines)))
	}
}

// wait blocks until everything enqueued before the call has been handed
// to the persister. It reports the error of the latest save if that save
// was dropped.
func (w *writer) wait(ctx context.Context) error {
	reply := make(chan error, 1)

	select {
	case w.flush <- reply:
	case <-w.done:
		return errors.New("cart writer is closed")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains pending work and stops the goroutine. If ctx expires first
// in-flight retries are abandoned. Like wait, it reports a dropped latest
// save.
func (w *writer) close(ctx context.Context) error {
	w.stopOnce.Do(func() {
		close(w.stop)
	})

	select {
	case <-w.done:
		w.cancel()
		return w.lastErr
	case <-ctx.Done():
		w.cancel()
		<-w.done
		return errors.Join(ctx.Err(), w.lastErr)
	}
}
