package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/nickagee13/commandtrack/internal/dependencies/clock"
	"github.com/nickagee13/commandtrack/internal/dependencies/random"
	"github.com/nickagee13/commandtrack/internal/services/game"
	"github.com/nickagee13/commandtrack/internal/services/ownership"
	"github.com/nickagee13/commandtrack/internal/services/profile"
	"github.com/nickagee13/commandtrack/internal/services/share"
	"github.com/nickagee13/commandtrack/internal/sharecode"
	"github.com/nickagee13/commandtrack/internal/storage"
	"github.com/nickagee13/commandtrack/internal/storage/memory"
	postgresstorage "github.com/nickagee13/commandtrack/internal/storage/postgres"
	redisstorage "github.com/nickagee13/commandtrack/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	ProfileService   *profile.Service
	OwnershipService *ownership.Service
	ShareService     *share.Service
	GameService      *game.Service
}

// Config holds configuration for the application factory
type Config struct {
	// ShareConfig holds share engine settings (optional)
	// Zero-value fields fall back to share.DefaultConfig()
	ShareConfig share.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres connection settings (required if StorageType is "postgres")
	PostgresConfig *postgresstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgresstorage.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.ShareConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, shareCfg share.Config, logger *slog.Logger) *App {
	// Create services
	generator := sharecode.NewGenerator(rnd)
	profileService := profile.New(store, generator, clk)
	ownershipService := ownership.New(store, profileService, clk, logger)
	shareService := share.New(store, ownershipService, generator, clk, logger, shareCfg)
	gameService := game.New(store, clk, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		ProfileService:   profileService,
		OwnershipService: ownershipService,
		ShareService:     shareService,
		GameService:      gameService,
	}
}
