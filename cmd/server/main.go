package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/gomoku-go/internal/api"
	"github.com/mcoot/gomoku-go/internal/config"
	"github.com/mcoot/gomoku-go/internal/factory"
	"github.com/mcoot/gomoku-go/internal/services/game"
	redisstorage "github.com/mcoot/gomoku-go/internal/storage/redis"
	"github.com/mcoot/gomoku-go/internal/telemetry"
)

// hubCleanupInterval is how often SSE hubs without listeners are dropped
const hubCleanupInterval = time.Minute

func main() {
	// Bootstrap logger for configuration errors
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := factory.New(factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go app.HubManager.RunCleanup(ctx, hubCleanupInterval)

	router := api.NewRouter(api.RouterConfig{
		Logger:                logger,
		PlayerService:         app.PlayerService,
		GameController:        app.GameController,
		MatchmakingController: app.MatchmakingController,
		HubManager:            app.HubManager,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
		slog.Duration("turn_timeout", cfg.TurnTimeout),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	if err := app.Close(); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		exitCode = 1
	}
	if err := shutdownTracing(context.Background()); err != nil {
		logger.Error("failed to flush traces", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

func factoryConfig(cfg config.Config, logger *slog.Logger) factory.Config {
	out := factory.Config{
		Logger:       logger,
		StorageType:  cfg.Storage,
		SQLitePath:   cfg.SQLitePath,
		DomainConfig: game.DomainConfig{TurnTimeout: cfg.TurnTimeout},
		NATSURL:      cfg.NATSURL,
	}
	if cfg.Storage == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		out.RedisConfig = &redisCfg
	}
	return out
}
