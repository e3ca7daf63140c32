package handler

import "cafeteria-system/internal/microservices/tracker/service"

type Handler struct {
	TrackerHandler *TrackerHandler
}

func New(svc service.TrackerServiceInterface) *Handler {
	return &Handler{
		TrackerHandler: NewTrackerHandler(svc),
	}
}
