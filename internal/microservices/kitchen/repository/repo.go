package repository

import "github.com/jackc/pgx/v5/pgxpool"

type Repository struct {
	KitchenRepo KitchenRepositoryInterface
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		KitchenRepo: NewKitchenRepository(db),
	}
}
