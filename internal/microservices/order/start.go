package order

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/order/handlers"
	"cafeteria-system/internal/microservices/order/repository"
	"cafeteria-system/internal/microservices/order/service"
)

func New(db *pgxpool.Pool, stock service.StockClient, jobs service.JobPublisher, resolver auth.Resolver,
	opts service.Options, sc *ops.ServiceContext) *handlers.Handler {
	// Initialize repository
	repo := repository.New(db)
	sc.AddCheck("postgres", repo.OrderRepo.Ping)
	// Initialize service
	svc := service.New(repo, stock, jobs, resolver, opts, sc)
	return handlers.New(svc)
}

func Register(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("POST /orders", h.OrderHandler.AddOrder)
}
