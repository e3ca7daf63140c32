package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafeteria-system/internal/domain"
)

type KitchenRepositoryInterface interface {
	// AdvanceStatus moves an order from one status to the next only if it is still in from.
	// It reports whether the row changed, which is the redelivery guard.
	AdvanceStatus(ctx context.Context, orderID string, from, to domain.Status, eta int) (bool, error)
	Ping(ctx context.Context) error
}

// execer is the part of *pgxpool.Pool the repository uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type KitchenRepository struct {
	db execer
}

func NewKitchenRepository(db *pgxpool.Pool) KitchenRepositoryInterface {
	return &KitchenRepository{db: db}
}

func (r *KitchenRepository) AdvanceStatus(ctx context.Context, orderID string, from, to domain.Status, eta int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status=$1, eta_minutes=$2, updated_at=now()
		WHERE id=$3 AND status=$4
	`, string(to), eta, orderID, string(from))
	if err != nil {
		return false, fmt.Errorf("advance order %s %s->%s: %w", orderID, from, to, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *KitchenRepository) Ping(ctx context.Context) error { return r.db.Ping(ctx) }
