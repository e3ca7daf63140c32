package service

import (
	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/order/repository"
)

type Service struct {
	OrderService OrderServiceInterface
}

func New(repo *repository.Repository, stock StockClient, jobs JobPublisher, resolver auth.Resolver,
	opts Options, sc *ops.ServiceContext) *Service {
	return &Service{
		OrderService: NewOrderService(repo.OrderRepo, stock, jobs, resolver, opts, sc.Metrics, sc.Log),
	}
}
