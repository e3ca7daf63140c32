package repository

import (
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
)

type Repository struct {
	StockRepo    StockRepositoryInterface
	Reservations ReservationStore
}

func New(db *sqlx.DB, rdb *goredis.Client) *Repository {
	return &Repository{
		StockRepo:    NewStockRepository(db),
		Reservations: NewRedisReservations(rdb),
	}
}
