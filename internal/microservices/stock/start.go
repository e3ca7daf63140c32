package stock

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/stock/handlers"
	"cafeteria-system/internal/microservices/stock/repository"
	"cafeteria-system/internal/microservices/stock/service"
)

// New assembles the stock service over Postgres and Redis and registers both as health dependencies.
func New(db *sqlx.DB, rdb *goredis.Client, ttl time.Duration, sc *ops.ServiceContext) *handlers.Handler {
	repo := repository.New(db, rdb)
	sc.AddCheck("postgres", repo.StockRepo.Ping)
	sc.AddCheck("redis", repo.Reservations.Ping)
	return handlers.New(service.New(repo, ttl, sc))
}

func Router(h *handlers.Handler, sc *ops.ServiceContext) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stock/reserve", h.StockHandler.Reserve)
	mux.HandleFunc("POST /stock/release", h.StockHandler.Release)
	mux.HandleFunc("GET /stock/{item_id}", h.StockHandler.GetStock)
	sc.Register(mux)
	return mux
}
