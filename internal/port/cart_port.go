package port

import (
	"context"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
)

// CartPersister stores the full line sequence of one cart in a named slot.
// Load on an absent slot returns no lines and no error.
type CartPersister interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

// CartBlobRepository is a CartPersister whose slot can also be removed.
type CartBlobRepository interface {
	CartPersister
	Delete(ctx context.Context) (bool, error)
}
