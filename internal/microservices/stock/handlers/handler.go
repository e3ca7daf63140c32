package handlers

import "cafeteria-system/internal/microservices/stock/service"

type Handler struct {
	StockHandler *StockHandler
}

func New(s *service.Service) *Handler {
	return &Handler{
		StockHandler: NewStockHandler(s.StockService),
	}
}
