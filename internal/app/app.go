// Package app holds the process wiring shared by every --mode.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/mq"
	"cafeteria-system/internal/connections/rabbitmq"
)

func RabbitConfig(c config.MQ) rabbitmq.Config {
	return rabbitmq.Config{Host: c.Host, Port: c.Port, User: c.User, Password: c.Pass, VHost: c.VHost, UseTLS: c.TLS}
}

// DialRabbit retries for roughly twenty seconds, the broker usually boots next to us.
func DialRabbit(ctx context.Context, c config.MQ) (*rabbitmq.Client, error) {
	return rabbitmq.DialContext(ctx, RabbitConfig(c), 10, 2*time.Second)
}

// Resolver tries a JWT first when a secret is configured, then the auth_tokens table.
func Resolver(c config.Auth, pool *pgxpool.Pool) auth.Resolver {
	var rs []auth.Resolver
	if c.JWTSecret != "" {
		rs = append(rs, auth.NewJWTResolver(c.JWTSecret))
	}
	rs = append(rs, auth.NewPGResolver(pool))
	return auth.NewVerifier(c.VerifyTimeout, rs...)
}

func Retry(c config.Retry) mq.RetryPolicy {
	return mq.RetryPolicy{Interval: c.Interval, Backoff: c.Backoff, MaxInterval: c.MaxInterval}
}

// Serve adds the HTTP server for mux to g.
func Serve(ctx context.Context, g *errgroup.Group, port int, mux *http.ServeMux, lg *logger.Logger) {
	addr := fmt.Sprintf(":%d", port)
	srv := httpx.New(addr, httpx.WithRequestLog(lg, mux))
	g.Go(func() error {
		lg.Info("http_listening", map[string]any{"addr": addr})
		return srv.Run(ctx)
	})
}
