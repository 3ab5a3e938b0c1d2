package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/auth"
	"storefront/cache"
	"storefront/catalog"
	"storefront/condb"
	"storefront/config"
	"storefront/controllers"
	"storefront/events"
	"storefront/routes"
	"storefront/seed"
	"storefront/store"
	"storefront/utils"
)

func main() {
	seedOnly := flag.Bool("seed", false, "load the fixture catalogue and exit")
	flag.Parse()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *seedOnly); err != nil {
		logger.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, seedOnly bool) error {
	var (
		st   store.Store
		ping func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pool, err := condb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := condb.Migrate(ctx, pool); err != nil {
			return err
		}
		st = store.NewPostgres(pool)
		ping = pool.Ping
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		st = store.NewMemory()
	}

	var responseCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		r, err := cache.NewRedis(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "error", err)
		} else {
			defer r.Close()
			responseCache = r
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		mq, err := events.DialRabbitMQ(cfg.RabbitMQURL, cfg.ProductExchange, cfg.ProductQueue)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", "error", err)
		} else {
			defer mq.Close()
			publisher = mq
		}
	}

	cat := catalog.NewService(st, catalog.WithCache(responseCache, cfg.CacheTTL), catalog.WithLogger(logger))

	// The in-memory store starts empty, so it is always seeded.
	_, inMemory := st.(*store.Memory)
	if seedOnly || inMemory {
		seeder := &seed.Seeder{Store: st, Cache: cat, Events: publisher, Log: logger}
		if _, err := seeder.Run(ctx); err != nil {
			return err
		}
		if seedOnly {
			return nil
		}
	}

	jwt := utils.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	h := controllers.NewHandler(cat, auth.NewService(st, jwt), ping, logger)
	app := routes.New(routes.Options{
		Handler:      h,
		JWT:          jwt,
		Logger:       logger,
		AllowOrigins: cfg.AllowOrigins,
		StaticDir:    cfg.StaticDir,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "port", cfg.Port)
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
