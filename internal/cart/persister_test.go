package cart_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
)

var errUnavailable = errors.New("store unavailable")

// memoryPersister records every saved sequence in order.
type memoryPersister struct {
	mu sync.Mutex

	loaded  []domain.CartLine
	loadErr error

	saves     [][]domain.CartLine
	failures  int // number of Save calls to fail before succeeding
	saveDelay time.Duration
}

func (p *memoryPersister) Load(context.Context) ([]domain.CartLine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadErr != nil {
		return nil, p.loadErr
	}

	return slices.Clone(p.loaded), nil
}

func (p *memoryPersister) Save(ctx context.Context, lines []domain.CartLine) error {
	if p.saveDelay > 0 {
		select {
		case <-time.After(p.saveDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failures != 0 {
		if p.failures > 0 {
			p.failures--
		}
		return errUnavailable
	}

	p.saves = append(p.saves, slices.Clone(lines))

	return nil
}

func (p *memoryPersister) saved() [][]domain.CartLine {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.saves)
}

func (p *memoryPersister) last() ([]domain.CartLine, bool) {
	saves := p.saved()
	if len(saves) == 0 {
		return nil, false
	}

	return saves[len(saves)-1], true
}
