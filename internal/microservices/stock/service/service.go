package service

import (
	"time"

	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/stock/repository"
)

type Service struct {
	StockService StockServiceInterface
}

func New(repo *repository.Repository, ttl time.Duration, sc *ops.ServiceContext) *Service {
	return &Service{
		StockService: NewStockService(repo.StockRepo, repo.Reservations, ttl, sc.Chaos, sc.Metrics, sc.Log),
	}
}
