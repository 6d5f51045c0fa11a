// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/ai-ceo/auth"
	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/db"
	"github.com/danielhkuo/ai-ceo/handlers"
	"github.com/danielhkuo/ai-ceo/kv"
	"github.com/danielhkuo/ai-ceo/leaderboard"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/router"
	"github.com/danielhkuo/ai-ceo/seed"
	"github.com/danielhkuo/ai-ceo/store"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintAdminKey {
		fmt.Println(auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt))
		return
	}

	if err := logger.Initialize(logger.Configuration{
		LogFile: cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("server closed")
}

func run(ctx context.Context, cfg cliparse.Config) error {
	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	logger.Info("database schema ready", zap.String("type", cfg.DatabaseType))

	deps := handlers.Deps{
		Candidates: store.NewSQLStore(conn),
		KV:         kv.NewSQLStore(conn),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}

		feed, err := leaderboard.NewRedisFeed(ctx, client, leaderboard.DefaultChannel)
		if err != nil {
			return err
		}
		defer feed.Close()

		deps.KV = kv.NewRedisStore(client, "aiceo:")
		deps.Feed = feed
		logger.Info("using redis for budgets and live updates")
	}

	if deps.Seeds, err = seed.Load(cfg.SeedFile); err != nil {
		return err
	}

	svc := handlers.NewServices(deps, cfg)
	defer svc.Close()

	if _, err := svc.Seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	salt, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, salt, cfg.TrustProxy)

	server := &http.Server{
		Handler:           middleware.CORS(router.NewRouter(svc, cfg, limiter)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return ignoreCanceled(svc.Leaderboard.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(svc.Moderation.Run(gctx)) })
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		svc.Sessions.Run(gctx, sweepInterval)
		return nil
	})

	g.Go(func() error {
		logger.Info("listening", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		// Live leaderboard sockets are hijacked; end them before draining.
		svc.Leaderboard.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
