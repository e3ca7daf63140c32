package stock

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/app"
	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/connections/database"
	"cafeteria-system/internal/connections/redis"
	"cafeteria-system/internal/microservices/stock"
	"cafeteria-system/internal/microservices/stock/service"
)

const serviceName = "stock-service"

func Run(ctx context.Context, cfg config.App, port int, lg *logger.Logger) error {
	lg = lg.Named(serviceName)

	sqlDB, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if cfg.Stock.MenuFile != "" {
		n, err := stock.Seed(ctx, sqlDB, cfg.Stock.MenuFile)
		if err != nil {
			return err
		}
		lg.Info("menu_seeded", map[string]any{"file": cfg.Stock.MenuFile, "items": n})
	}

	sc := ops.NewServiceContext(serviceName, chaos.New(cfg.ChaosDelay),
		metrics.New(service.MetricReserveTotal, service.MetricReserveFailed), lg)
	mux := stock.Router(stock.New(sqlDB, rdb, cfg.Stock.ReservationTTL, sc), sc)

	g, gctx := errgroup.WithContext(ctx)
	app.Serve(gctx, g, port, mux, lg)
	return g.Wait()
}
