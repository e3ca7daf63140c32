package repository

import "github.com/jackc/pgx/v5/pgxpool"

type Repository struct {
	OrderRepo OrderRepositoryInterface
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		OrderRepo: NewOrderRepository(db),
	}
}
