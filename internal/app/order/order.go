package order

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/app"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/db"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/common/mq"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/order"
	"cafeteria-system/internal/microservices/order/service"
	"cafeteria-system/internal/microservices/tracker"
)

const serviceName = "order-gateway"

func Run(ctx context.Context, cfg config.App, port int, lg *logger.Logger) error {
	lg = lg.Named(serviceName)

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	rmq, err := app.DialRabbit(ctx, cfg.Rabbit)
	if err != nil {
		return err
	}
	defer rmq.Close()

	sc := ops.NewServiceContext(serviceName, nil,
		metrics.New(service.MetricOrdersCreated, service.MetricOrdersFailed), lg)
	sc.AddCheck("rabbitmq", func(context.Context) error { return rmq.Ping() })

	resolver := app.Resolver(cfg.Auth, pool.Pool)
	stock := service.NewHTTPStockClient(cfg.Order.StockURL, &http.Client{Timeout: cfg.Order.ReserveTimeout})
	jobs := mq.NewQueuePublisher(rmq, mq.KitchenJobs, serviceName)
	opts := service.Options{
		QueuedETA:      cfg.Order.QueuedETA,
		ReserveTimeout: cfg.Order.ReserveTimeout,
		PublishTimeout: cfg.Order.PublishTimeout,
	}

	mux := http.NewServeMux()
	order.Register(mux, order.New(pool.Pool, stock, jobs, resolver, opts, sc))
	tracker.Register(mux, tracker.New(pool.Pool, resolver, sc))
	sc.Register(mux)

	g, gctx := errgroup.WithContext(ctx)
	app.Serve(gctx, g, port, mux, lg)
	return g.Wait()
}
