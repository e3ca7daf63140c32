package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"cafeteria-system/internal/app/kitchen"
	"cafeteria-system/internal/app/notify"
	"cafeteria-system/internal/app/order"
	"cafeteria-system/internal/app/stock"
	"cafeteria-system/internal/app/tracking"
	"cafeteria-system/internal/common/config"
	"cafeteria-system/internal/common/logger"
)

const modes = "order-gateway | stock-service | kitchen-worker | notification-hub | tracking-service"

var defaultPorts = map[string]int{
	"order-gateway":    8001,
	"stock-service":    8002,
	"kitchen-worker":   8003,
	"notification-hub": 8004,
	"tracking-service": 8005,
}

func main() {
	mode := flag.String("mode", "", modes)
	port := flag.Int("port", 0, "http port (defaults per mode)")
	cfgPath := flag.String("config", "", "path to YAML config (default: ./config.yaml if present)")
	flag.Parse()

	lg := logger.New("bootstrap")

	def, ok := defaultPorts[*mode]
	if !ok {
		fmt.Fprintln(os.Stderr, "--mode is required: "+modes)
		os.Exit(2)
	}
	if *port == 0 {
		*port = def
	}

	path := *cfgPath
	if path == "" {
		p, err := config.FindConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			lg.Error("config_lookup_failed", err, nil)
			os.Exit(1)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": path})
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lg.Info("service_started", map[string]any{"mode": *mode, "port": *port, "config": path})

	var run func(context.Context, config.App, int, *logger.Logger) error
	switch *mode {
	case "order-gateway":
		run = order.Run
	case "stock-service":
		run = stock.Run
	case "kitchen-worker":
		run = kitchen.Run
	case "notification-hub":
		run = notify.Run
	case "tracking-service":
		run = tracking.Run
	}
	if err := run(ctx, cfg, *port, lg); err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
	lg.Info("graceful_shutdown", map[string]any{"mode": *mode})
}
