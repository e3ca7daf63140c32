package kitchen

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/app"
	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/db"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/kitchen"
	"cafeteria-system/internal/microservices/kitchen/service"
)

const serviceName = "kitchen-worker"

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

	sc := ops.NewServiceContext(serviceName, chaos.New(cfg.ChaosDelay),
		metrics.New(service.MetricProcessed, service.MetricFailures), lg)
	sc.AddCheck("rabbitmq", func(context.Context) error { return rmq.Ping() })

	worker := kitchen.New(pool.Pool, rmq, app.Retry(cfg.Retry), cfg.Retry.IdleWait, service.Options{
		InProgressETA: cfg.Kitchen.InProgressETA,
		PrepMin:       cfg.Kitchen.PrepMin,
		PrepMax:       cfg.Kitchen.PrepMax,
	}, sc)

	mux := http.NewServeMux()
	sc.Register(mux)

	g, gctx := errgroup.WithContext(ctx)
	app.Serve(gctx, g, port, mux, lg)
	g.Go(func() error { return worker.Run(gctx) })
	return g.Wait()
}
