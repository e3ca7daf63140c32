package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafeteria-system/internal/domain"
)

type OrderRepositoryInterface interface {
	// MenuItems fetches the given ids in one query. Missing ids are simply absent from the map.
	MenuItems(ctx context.Context, ids []string) (map[string]domain.MenuItem, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	Ping(ctx context.Context) error
}

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

func (or *OrderRepository) MenuItems(ctx context.Context, ids []string) (map[string]domain.MenuItem, error) {
	rows, err := or.db.Query(ctx, `SELECT id, name, price, available FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]domain.MenuItem, len(ids))
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Available); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items[it.ID] = it
	}
	return items, rows.Err()
}

func (or *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1. Insert order
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, student_id, status, eta_minutes, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, order.ID, order.OwnerID, string(order.Status), order.ETAMinutes, order.TotalAmount, order.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// 2. Insert order lines
	batch := &pgx.Batch{}
	for _, l := range order.Lines {
		batch.Queue(`INSERT INTO order_items (order_id, item_id, qty, unit_price) VALUES ($1, $2, $3, $4)`,
			order.ID, l.ItemID, l.Quantity, l.UnitPrice)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (or *OrderRepository) Ping(ctx context.Context) error { return or.db.Ping(ctx) }
