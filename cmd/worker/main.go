package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/attendance"
	"attendance-tracker/internal/config"
	"attendance-tracker/internal/queue"
	"attendance-tracker/internal/roster"
	"attendance-tracker/internal/store"
	"attendance-tracker/internal/summary"
)

// Worker consumes sheet.saved messages and re-warms attendance summaries.
func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error.Fatalf("config: %v", err)
	}
	if err := checkBackends(cfg); err != nil {
		logger.Error.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.Database)
	if err != nil {
		logger.Error.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.Redis)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		logger.Error.Printf("WARNING: redis not available at %s, BRPOP will keep retrying", cfg.Redis.Addr)
	}

	cache := summary.NewRedisCache(redisClient.Client)
	ledger := attendance.NewService(db, roster.New(db, cfg.Auth.BcryptCost))
	summaries := summary.NewService(ledger, cache, cfg.Cache.SummaryTTL.Duration)
	q := queue.NewRedisQueue(redisClient.Client, cfg.Queue.Key)

	if err := summaries.Run(ctx, q); err != nil {
		logger.Error.Fatalf("queue consume init failed: %v", err)
	}
}

// checkBackends refuses to start when the worker would share nothing with
// the api process.
func checkBackends(cfg config.App) error {
	if cfg.Queue.Backend == "memory" {
		return fmt.Errorf("queue backend is %q; the api process re-warms summaries itself", cfg.Queue.Backend)
	}
	if cfg.Cache.Backend != "redis" {
		return fmt.Errorf("cache backend is %q; summaries warmed here would never reach the api", cfg.Cache.Backend)
	}
	return nil
}
