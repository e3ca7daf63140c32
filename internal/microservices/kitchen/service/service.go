package service

import (
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/kitchen/repository"
)

type Service struct {
	KitchenService KitchenServiceInterface
}

func New(repo *repository.Repository, events EventPublisher, opts Options, sc *ops.ServiceContext) *Service {
	return &Service{
		KitchenService: NewKitchenService(repo.KitchenRepo, events, opts, sc.Chaos, sc.Metrics, sc.Log),
	}
}
