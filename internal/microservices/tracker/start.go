package tracker

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/tracker/handler"
	"cafeteria-system/internal/microservices/tracker/repository"
	"cafeteria-system/internal/microservices/tracker/service"
)

// New builds the order projection over an already open pool.
func New(db *pgxpool.Pool, resolver auth.Resolver, sc *ops.ServiceContext) *handler.Handler {
	repo := repository.NewTrackerRepo(db)
	sc.AddCheck("postgres", repo.Ping)
	return handler.New(service.NewTrackerService(repo, resolver))
}

func Register(mux *http.ServeMux, h *handler.Handler) {
	mux.HandleFunc("GET /orders/{order_id}", h.TrackerHandler.GetOrder)
}
