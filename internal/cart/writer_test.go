package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/nikolayk812/cartstore-demo/internal/cart"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPersistence_preservesOrder(t *testing.T) {
	p := &memoryPersister{saveDelay: 2 * time.Millisecond}
	s := newStore(t, p)

	line := domain.CartLine{ProductID: 1, UnitPrice: decimal.NewFromInt(1), MaxStock: 1000}
	for range 100 {
		s.AddItem(line, 1)
	}
	require.NoError(t, s.Flush(t.Context()))

	saves := p.saved()
	require.NotEmpty(t, saves)

	// slow saves coalesce, but quantities must only ever grow
	previous := 0
	for _, lines := range saves {
		require.Len(t, lines, 1)
		assert.Greater(t, lines[0].Quantity, previous)
		previous = lines[0].Quantity
	}

	last, ok := p.last()
	require.True(t, ok)
	assertLines(t, s.Snapshot().Lines, last)
}

func TestPersistence_retriesTransientFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := &memoryPersister{failures: 2}
	s := newStore(t, p,
		cart.WithSaveRetry(5, time.Millisecond),
		cart.WithLogger(zap.New(core)))

	snapshot := s.AddItem(randomLine(), 1)
	require.NoError(t, s.Flush(t.Context()))

	saves := p.saved()
	require.Len(t, saves, 1)
	assertLines(t, snapshot.Lines, saves[0])
	assert.Equal(t, 2, logs.FilterMessage("cart save failed, retrying").Len())
	assert.Zero(t, logs.FilterMessage("cart save dropped").Len())
}

func TestPersistence_dropsAfterMaxTries(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := &memoryPersister{failures: -1}
	s := cart.New(p,
		cart.WithSaveRetry(3, time.Millisecond),
		cart.WithLogger(zap.New(core)))

	snapshot := s.AddItem(domain.CartLine{ProductID: 1, MaxStock: 2}, 1)
	require.ErrorIs(t, s.Flush(t.Context()), errUnavailable)

	assert.Empty(t, p.saved())
	assert.Equal(t, 1, logs.FilterMessage("cart save dropped").Len())

	// the store is unaffected by persistence failures
	assertLines(t, snapshot.Lines, s.Snapshot().Lines)

	require.ErrorIs(t, s.Close(t.Context()), errUnavailable)
}

func TestPersistence_laterSuccessClearsDroppedSave(t *testing.T) {
	p := &memoryPersister{failures: 2}
	s := newStore(t, p, cart.WithSaveRetry(2, time.Millisecond))

	s.AddItem(domain.CartLine{ProductID: 1, MaxStock: 5}, 1)
	require.ErrorIs(t, s.Flush(t.Context()), errUnavailable)

	snapshot := s.AddItem(domain.CartLine{ProductID: 1, MaxStock: 5}, 1)
	require.NoError(t, s.Flush(t.Context()))

	last, ok := p.last()
	require.True(t, ok)
	assertLines(t, snapshot.Lines, last)
}

func TestClose_reportsDroppedSave(t *testing.T) {
	p := &memoryPersister{failures: -1}
	s := cart.New(p, cart.WithSaveRetry(2, time.Millisecond))

	s.ClearCart()

	require.ErrorIs(t, s.Close(t.Context()), errUnavailable)
	assert.Empty(t, p.saved())
}

func TestClose(t *testing.T) {
	p := &memoryPersister{}
	s := cart.New(p)

	snapshot := s.AddItem(randomLine(), 1)
	require.NoError(t, s.Close(t.Context()))

	last, ok := p.last()
	require.True(t, ok)
	assertLines(t, snapshot.Lines, last)

	assert.Error(t, s.Flush(t.Context()))
	assert.NoError(t, s.Close(t.Context()), "close is idempotent")
}

func TestClose_deadlineAbandonsSlowSave(t *testing.T) {
	p := &memoryPersister{saveDelay: time.Hour}
	s := cart.New(p)

	s.AddItem(randomLine(), 1)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	err := s.Close(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, p.saved())
}

func TestFlush_contextCanceled(t *testing.T) {
	p := &memoryPersister{saveDelay: time.Hour}
	s := cart.New(p)

	s.AddItem(randomLine(), 1)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, s.Flush(ctx), context.DeadlineExceeded)

	closeCtx, closeCancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer closeCancel()
	_ = s.Close(closeCtx)
}
