package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cafeteria-system/internal/domain"
)

type StockRepositoryInterface interface {
	GetItem(ctx context.Context, id string) (domain.MenuItem, bool, error)
	// MarkUnavailable flips available true→false and reports whether exactly one row changed.
	MarkUnavailable(ctx context.Context, id string) (bool, error)
	MarkAvailable(ctx context.Context, id string) error
	UpsertItems(ctx context.Context, items []domain.MenuItem) error
	Ping(ctx context.Context) error
}

type StockRepository struct {
	db *sqlx.DB
}

func NewStockRepository(db *sqlx.DB) StockRepositoryInterface {
	return &StockRepository{db: db}
}

func (r *StockRepository) GetItem(ctx context.Context, id string) (domain.MenuItem, bool, error) {
	var it domain.MenuItem
	err := r.db.GetContext(ctx, &it, `SELECT id, name, price, available FROM menu_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuItem{}, false, nil
	}
	if err != nil {
		return domain.MenuItem{}, false, fmt.Errorf("get menu item %s: %w", id, err)
	}
	return it, true, nil
}

func (r *StockRepository) MarkUnavailable(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET available = FALSE WHERE id = $1 AND available = TRUE`, id)
	if err != nil {
		return false, fmt.Errorf("reserve menu item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for %s: %w", id, err)
	}
	return n == 1, nil
}

func (r *StockRepository) MarkAvailable(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE menu_items SET available = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("release menu item %s: %w", id, err)
	}
	return nil
}

// UpsertItems seeds the menu. Availability of rows that already exist is left alone.
func (r *StockRepository) UpsertItems(ctx context.Context, items []domain.MenuItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO menu_items (id, name, price, available)
			VALUES (:id, :name, :price, :available)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price
		`, it); err != nil {
			return fmt.Errorf("upsert menu item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

func (r *StockRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
