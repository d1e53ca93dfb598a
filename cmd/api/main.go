package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/api"
	"attendance-tracker/internal/attendance"
	"attendance-tracker/internal/auth"
	"attendance-tracker/internal/config"
	"attendance-tracker/internal/httpmiddleware"
	"attendance-tracker/internal/queue"
	"attendance-tracker/internal/roster"
	"attendance-tracker/internal/store"
	"attendance-tracker/internal/summary"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error.Fatalf("config: %v", err)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		logger.Error.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(cfg.Database.DSN); err != nil {
			return err
		}
	}
	db, err := store.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *store.Redis
	if usesRedis(cfg) {
		redisClient = store.NewRedis(cfg.Redis)
		defer redisClient.Close()
		if !redisClient.Healthy(ctx) {
			logger.Error.Printf("warning: redis not reachable at %s", cfg.Redis.Addr)
		}
	}

	var q queue.Queue
	if cfg.Queue.Backend == "memory" {
		q = queue.NewInMemory(256)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, cfg.Queue.Key)
	}

	var cache summary.Cache = summary.NewMemoryCache()
	if cfg.Cache.Backend == "redis" {
		cache = summary.NewRedisCache(redisClient.Client)
	}

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.HTTP.RateLimitPerMin, cfg.HTTP.RateLimitPerMin)
	if cfg.HTTP.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.HTTP.RateLimitPerMin)
	}

	rosterStore := roster.New(db, cfg.Auth.BcryptCost)
	ledger := attendance.NewService(db, rosterStore)
	summaries := summary.NewService(ledger, cache, cfg.Cache.SummaryTTL.Duration)

	// without a shared queue the re-warm loop runs in this process
	if mem, ok := q.(*queue.InMemory); ok {
		go func() {
			if err := summaries.Run(ctx, mem); err != nil {
				logger.Error.Printf("summary worker stopped: %v", err)
			}
		}()
	}

	router := api.NewRouter(api.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Roster:    rosterStore,
		Ledger:    ledger,
		Summaries: summaries,
		Queue:     q,
		Signer:    auth.NewSigner(cfg.Auth),
		Limiter:   limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("starting server on :%s (env=%s, db=%s)", cfg.HTTP.Port, cfg.Env, db.Dialect)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("server forced shutdown: %v", err)
	}
	logger.Info.Println("server exited")
	return nil
}

func usesRedis(cfg config.App) bool {
	return cfg.Queue.Backend != "memory" || cfg.Cache.Backend == "redis" || cfg.HTTP.RateLimitBackend == "redis"
}
