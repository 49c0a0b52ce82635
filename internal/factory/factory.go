package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/events"
	natspub "github.com/mcoot/gomoku-go/internal/events/nats"
	"github.com/mcoot/gomoku-go/internal/events/sse"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/services/matchmaking"
	"github.com/mcoot/gomoku-go/internal/services/player"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/storage/memory"
	redisstorage "github.com/mcoot/gomoku-go/internal/storage/redis"
	"github.com/mcoot/gomoku-go/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Domain                *game.Domain
	GameController        *game.Controller
	MatchmakingController *matchmaking.Controller
	PlayerService         *player.Service

	// Events
	HubManager *sse.HubManager
	Publisher  events.Publisher

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// DomainConfig holds the game rules outside the variant catalog
	// If zero value, defaults to game.DefaultDomainConfig()
	DomainConfig game.DomainConfig
	// NATSURL enables event fan-out to NATS when set
	NATSURL string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []io.Closer
	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}

	domainCfg := cfg.DomainConfig
	if domainCfg.TurnTimeout == 0 {
		domainCfg = game.DefaultDomainConfig()
	}

	hubManager := sse.NewHubManager(logger)
	publishers := events.Multi{hubManager}
	if cfg.NATSURL != "" {
		pub, err := natspub.Connect(cfg.NATSURL, logger)
		if err != nil {
			_ = closeAll(closers)
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		publishers = append(publishers, pub)
		closers = append(closers, pub)
	}

	app := newWithDependencies(store, clock.New(), random.New(), domainCfg, hubManager, publishers, logger)
	app.closers = closers
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	domainCfg game.DomainConfig,
	hubManager *sse.HubManager,
	publisher events.Publisher,
	logger *slog.Logger,
) *App {
	domain := game.NewDomain(clk, domainCfg)

	return &App{
		Storage:               store,
		Clock:                 clk,
		Random:                rnd,
		Domain:                domain,
		GameController:        game.NewController(store, domain, clk, rnd, publisher, logger),
		MatchmakingController: matchmaking.NewController(store, domain, clk, rnd, publisher, logger),
		PlayerService:         player.New(store, clk, rnd, logger),
		HubManager:            hubManager,
		Publisher:             publisher,
	}
}

// Close stops the SSE hubs and releases storage and broker connections
func (a *App) Close() error {
	a.HubManager.Close()
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
