package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"cafeteria-system/internal/common/config"
)

// Connect returns a client once redis answers PING, retrying like the database connector.
func Connect(ctx context.Context, cfg config.Redis) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password:     cfg.Pass,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	const attempts = 10
	var err error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rdb.Ping(pctx).Err()
		cancel()
		if err == nil {
			return rdb, nil
		}
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, fmt.Errorf("redis connect canceled: %w", ctx.Err())
		}
	}
	_ = rdb.Close()
	return nil, fmt.Errorf("redis unreachable after %d attempts: %w", attempts, err)
}
