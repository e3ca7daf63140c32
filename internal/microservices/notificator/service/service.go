package service

import "cafeteria-system/internal/common/ops"

type Service struct {
	NotificatorService *NotificatorService
}

func New(b Broadcaster, sc *ops.ServiceContext) *Service {
	return &Service{NotificatorService: NewNotificatorService(b, sc.Chaos, sc.Metrics, sc.Log)}
}
