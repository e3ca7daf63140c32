package tracking

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/app"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/db"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/tracker"
)

const serviceName = "tracking-service"

// Run serves the read-only order projection without the intake route.
func Run(ctx context.Context, cfg config.App, port int, lg *logger.Logger) error {
	lg = lg.Named(serviceName)

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	sc := ops.NewServiceContext(serviceName, nil, nil, lg)
	mux := http.NewServeMux()
	tracker.Register(mux, tracker.New(pool.Pool, app.Resolver(cfg.Auth, pool.Pool), sc))
	sc.Register(mux)

	g, gctx := errgroup.WithContext(ctx)
	app.Serve(gctx, g, port, mux, lg)
	return g.Wait()
}
