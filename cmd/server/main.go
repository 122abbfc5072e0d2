package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"github.com/nickagee13/commandtrack/internal/api"
	"github.com/nickagee13/commandtrack/internal/factory"
	"github.com/nickagee13/commandtrack/internal/services/share"
	postgresstorage "github.com/nickagee13/commandtrack/internal/storage/postgres"
	redisstorage "github.com/nickagee13/commandtrack/internal/storage/redis"
)

// defaultSweepInterval is how often expired share codes are retired
const defaultSweepInterval = time.Hour

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		ShareConfig: share.Config{
			SessionPolicy: share.SessionRedemptionPolicy(os.Getenv("SESSION_REDEMPTION_POLICY")),
		},
	}

	// Configure the selected storage backend
	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			logger.Error("DATABASE_URL required when STORAGE_TYPE=postgres")
			os.Exit(1)
		}
		cfg.PostgresConfig = &postgresstorage.Config{DSN: dsn}
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		ProfileService:   app.ProfileService,
		OwnershipService: app.OwnershipService,
		ShareService:     app.ShareService,
		GameService:      app.GameService,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Schedule the expired share code sweep
	scheduler, err := startSweepScheduler(ctx, app, logger)
	if err != nil {
		logger.Error("failed to start sweep scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = scheduler.Shutdown() }()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// startSweepScheduler runs the periodic pass that retires expired share
// codes nobody tried to redeem
func startSweepScheduler(ctx context.Context, app *factory.App, logger *slog.Logger) (gocron.Scheduler, error) {
	interval := defaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		interval = parsed
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			cleaned, err := app.ShareService.SweepExpired(ctx)
			if err != nil {
				logger.Error("share code sweep failed", slog.String("error", err.Error()))
				return
			}
			if cleaned > 0 {
				logger.Info("share code sweep", slog.Int("cleaned", cleaned))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
