package handlers

import (
	"net/http"

	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/domain"
	"cafeteria-system/internal/microservices/stock/service"
)

type StockHandler struct {
	service service.StockServiceInterface
}

func NewStockHandler(s service.StockServiceInterface) *StockHandler {
	return &StockHandler{service: s}
}

func (sh *StockHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req domain.ReserveRequest
	if err := httpx.DecodeJSON(r, &req, http.StatusUnprocessableEntity); err != nil {
		httpx.WriteError(w, err)
		return
	}

	resp, err := sh.service.Reserve(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (sh *StockHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req domain.ReleaseRequest
	if err := httpx.DecodeJSON(r, &req, http.StatusUnprocessableEntity); err != nil {
		httpx.WriteError(w, err)
		return
	}

	resp, err := sh.service.Release(r.Context(), req.OrderID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (sh *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	view, err := sh.service.GetStock(r.Context(), r.PathValue("item_id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}
