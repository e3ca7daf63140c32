package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafeteria-system/internal/domain"
)

type TrackerRepoInterface interface {
	GetOrder(ctx context.Context, id string) (domain.Order, bool, error)
	Ping(ctx context.Context) error
}

type TrackerRepo struct {
	db *pgxpool.Pool
}

func NewTrackerRepo(db *pgxpool.Pool) *TrackerRepo { return &TrackerRepo{db: db} }

func (r *TrackerRepo) GetOrder(ctx context.Context, id string) (domain.Order, bool, error) {
	var o domain.Order
	var status string
	err := r.db.QueryRow(ctx, `
SELECT id, student_id, status, eta_minutes, total_amount, created_at, updated_at
FROM orders WHERE id=$1
`, id).Scan(&o.ID, &o.OwnerID, &status, &o.ETAMinutes, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("get order %s: %w", id, err)
	}
	o.Status = domain.Status(status)

	rows, err := r.db.Query(ctx, `
SELECT item_id, qty, unit_price FROM order_items WHERE order_id=$1 ORDER BY item_id
`, id)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("get order %s items: %w", id, err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderLine, error) {
		l := domain.OrderLine{OrderID: id}
		err := row.Scan(&l.ItemID, &l.Quantity, &l.UnitPrice)
		return l, err
	})
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("scan order %s items: %w", id, err)
	}
	o.Lines = lines
	return o, true, nil
}

func (r *TrackerRepo) Ping(ctx context.Context) error { return r.db.Ping(ctx) }
