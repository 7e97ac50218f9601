package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"relay-router/internal/common/logging"
	"relay-router/internal/config"
	"relay-router/internal/gateway"
	"relay-router/internal/handlers"
	"relay-router/internal/middleware"
	"relay-router/internal/ratelimit"
	"relay-router/internal/redis"
	"relay-router/internal/routing"
	"relay-router/internal/server"
	"relay-router/internal/storage"

	_ "relay-router/internal/storage/postgres"
	_ "relay-router/internal/storage/sqlite"
)

// scheduleRetention registers the relay log pruning job. A retention
// of zero or fewer days disables the sweep entirely; without the
// guard a zero-day cutoff would prune every log on the first run.
func scheduleRetention(sweeper *cron.Cron, prune func(context.Context, time.Time) (int64, error), days int, schedule string) error {
	if days <= 0 {
		logging.Info("relay log retention sweep disabled")
		return nil
	}

	_, err := sweeper.AddFunc(schedule, func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		removed, err := prune(ctx, cutoff)
		if err != nil {
			logging.Error("relay log retention sweep failed", err)
			return
		}
		logging.Info("relay log retention sweep completed",
			logging.Int64("removed", removed),
			logging.Time("cutoff", cutoff),
		)
	})
	return err
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("invalid configuration", err)
		os.Exit(1)
	}

	logging.InitGlobalLogger()
	defer logging.MustSync()

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logging.Error("storage initialization failed", err)
		os.Exit(1)
	}
	defer store.Close()

	var (
		redisClient *redis.Client
		limiter     *ratelimit.Limiter
		cacheHealth handlers.HealthChecker
	)
	if cfg.RedisEnabled {
		db, _ := strconv.Atoi(cfg.RedisDB)
		poolSize, _ := strconv.Atoi(cfg.RedisPoolSize)
		redisClient, err = redis.NewClient(&redis.Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       db,
			PoolSize: poolSize,
		})
		if err != nil {
			logging.Error("redis initialization failed", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		store = storage.NewCachedStore(store, redisClient, cfg.CacheTTL())
		cacheHealth = redisClient

		if cfg.RateLimitEnabled {
			limiter = ratelimit.NewLimiter(redisClient, &ratelimit.Config{
				DefaultLimit:  cfg.RateLimit(),
				DefaultWindow: cfg.RateWindow(),
				Enabled:       true,
			})
		}
	}

	var gw gateway.Gateway
	if cfg.GatewayBaseURL != "" {
		gw, err = gateway.NewClient(&gateway.Config{
			BaseURL: cfg.GatewayBaseURL,
			Token:   cfg.GatewayToken,
		})
		if err != nil {
			logging.Error("gateway initialization failed", err)
			os.Exit(1)
		}
	} else {
		logging.Warn("no gateway configured, outbound messages will be dropped")
		gw = gateway.Noop{}
	}

	engine := routing.NewEngine(store, store, gw, nil)

	h := handlers.New(store, engine, gw, limiter, cacheHealth)
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	h.RegisterRoutes(router)

	sweeper := cron.New()
	if err := scheduleRetention(sweeper, store.DeleteLogEventsBefore, cfg.LogRetentionDays, cfg.LogRetentionSchedule); err != nil {
		logging.Error("invalid retention schedule", err,
			logging.String("schedule", cfg.LogRetentionSchedule),
		)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	srv := server.New(router, cfg.Port)
	srv.Start()
	logging.Info("relay router started",
		logging.String("port", cfg.Port),
		logging.String("database", cfg.DatabaseType),
		logging.Bool("redis", cfg.RedisEnabled),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("shutdown failed", err)
	}
}
