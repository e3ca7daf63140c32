package handlers

import (
	"net/http"

	"cafeteria-system/internal/common/httpx"
	dto "cafeteria-system/internal/microservices/order/domain/dto"
	"cafeteria-system/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

func (oh *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req, http.StatusBadRequest); err != nil {
		httpx.WriteError(w, err)
		return
	}

	// Call service layer
	resp, err := oh.service.CreateOrder(r.Context(), httpx.BearerToken(r), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, resp)
}
