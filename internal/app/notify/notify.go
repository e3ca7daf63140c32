package notify

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
	"cafeteria-system/internal/microservices/notificator"
	"cafeteria-system/internal/microservices/notificator/hub"
	"cafeteria-system/internal/microservices/notificator/service"
)

const serviceName = "notification-hub"

func Run(ctx context.Context, cfg config.App, port int, lg *logger.Logger) error {
	lg = lg.Named(serviceName)

	// only for auth_tokens lookups
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
		metrics.New(service.MetricEvents, hub.MetricPushFailures, hub.MetricConnected), lg)
	sc.AddCheck("rabbitmq", func(context.Context) error { return rmq.Ping() })

	n := notificator.New(rmq, app.Resolver(cfg.Auth, pool.Pool), cfg.Hub.WriteTimeout,
		app.Retry(cfg.Retry), cfg.Retry.IdleWait, sc)

	mux := http.NewServeMux()
	n.Register(mux)
	sc.Register(mux)

	g, gctx := errgroup.WithContext(ctx)
	app.Serve(gctx, g, port, mux, lg)
	g.Go(func() error { return n.Run(gctx) })
	return g.Wait()
}
