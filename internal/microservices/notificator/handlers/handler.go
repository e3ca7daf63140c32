package handlers

import (
	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/logger"
)

type Handler struct {
	WSHandler *WSHandler
}

func New(r Registry, resolver auth.Resolver, lg *logger.Logger) *Handler {
	return &Handler{WSHandler: NewWSHandler(r, resolver, lg)}
}
