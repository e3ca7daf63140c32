package handler

import (
	"net/http"

	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/microservices/tracker/service"
)

type TrackerHandler struct {
	service service.TrackerServiceInterface
}

func NewTrackerHandler(svc service.TrackerServiceInterface) *TrackerHandler {
	return &TrackerHandler{service: svc}
}

func (h *TrackerHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), httpx.BearerToken(r), r.PathValue("order_id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}
