package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"cafeteria-system/internal/app"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/connections/database"
	"cafeteria-system/internal/microservices/stock"
)

// bootstrap prepares a fresh environment: schema, menu and queues. It is safe to rerun.
func main() {
	var cfgPath, menuPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config")
	flag.StringVar(&menuPath, "menu", "menu.yaml", "menu seed file; empty skips seeding")
	flag.Parse()

	lg := logger.New("bootstrap")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": cfgPath})
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, menuPath, lg); err != nil {
		lg.Error("bootstrap_failed", err, nil)
		os.Exit(1)
	}
	lg.Info("bootstrap_done", nil)
}

func run(ctx context.Context, cfg config.App, menuPath string, lg *logger.Logger) error {
	// DB connect
	db, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "port": cfg.Database.Port, "database": cfg.Database.Name})

	if err := database.Migrate(ctx, db, lg); err != nil {
		return err
	}

	if menuPath != "" {
		n, err := stock.Seed(ctx, db, menuPath)
		if err != nil {
			return err
		}
		lg.Info("menu_seeded", map[string]any{"file": menuPath, "items": n})
	}

	// Rabbit connect; Dial declares both durable queues
	rmq, err := app.DialRabbit(ctx, cfg.Rabbit)
	if err != nil {
		return err
	}
	defer rmq.Close()
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "port": cfg.Rabbit.Port, "vhost": cfg.Rabbit.VHost})
	return nil
}
