package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartstore-demo/internal/db"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/nikolayk812/cartstore-demo/internal/port"
)

type cartBlobRepository struct {
	q    *db.Queries
	slot string
}

func NewCartBlob(pool *pgxpool.Pool, slot string) (port.CartBlobRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if slot == "" {
		return nil, fmt.Errorf("slot is empty")
	}

	return &cartBlobRepository{
		q:    db.New(pool),
		slot: slot,
	}, nil
}

func NewCartBlobWithTx(tx pgx.Tx, slot string) (port.CartBlobRepository, error) {
	if slot == "" {
		return nil, fmt.Errorf("slot is empty")
	}

	return &cartBlobRepository{
		q:    db.New(tx),
		slot: slot,
	}, nil
}

func (r *cartBlobRepository) Load(ctx context.Context) ([]domain.CartLine, error) {
	blob, err := r.q.GetBlob(ctx, r.slot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("q.GetBlob: %w", err)
	}

	lines, err := decodeLines(blob.Payload)
	if err != nil {
		return nil, fmt.Errorf("slot[%s] payload is not valid: %w", r.slot, err)
	}

	return lines, nil
}

func (r *cartBlobRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	payload, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("encodeLines: %w", err)
	}

	err = r.q.UpsertBlob(ctx, db.UpsertBlobParams{
		Slot:    r.slot,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("q.UpsertBlob: %w", err)
	}

	return nil
}

func (r *cartBlobRepository) Delete(ctx context.Context) (bool, error) {
	rowsAffected, err := r.q.DeleteBlob(ctx, r.slot)
	if err != nil {
		return false, fmt.Errorf("q.DeleteBlob: %w", err)
	}

	return rowsAffected > 0, nil
}
