package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/parley-chat/parley/backend/internal/directory"
	"github.com/parley-chat/parley/backend/internal/handler"
	"github.com/parley-chat/parley/backend/internal/scheduler"
	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/backend/internal/storage/fs"
	"github.com/parley-chat/parley/backend/internal/storage/memory"
	"github.com/parley-chat/parley/backend/internal/storage/pebble"
	"github.com/parley-chat/parley/backend/internal/storage/pg"
	"github.com/parley-chat/parley/backend/internal/storage/redis"
	"github.com/parley-chat/parley/backend/internal/storage/sqlite"
	"github.com/parley-chat/parley/shared/config"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/jwt"
	"github.com/parley-chat/parley/shared/logger"
	"github.com/parley-chat/parley/shared/markdown"
	"github.com/parley-chat/parley/shared/middleware"
)

// Store is a snapshot store the process owns and must close.
type Store interface {
	service.SnapshotStore
	Close() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Store          Store
	Scheduler      *scheduler.Scheduler
	Standup        *service.Standup
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
}

// OpenStore picks the backend named by storage.driver.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	tag, err := codec.ParseCompressionTag(cfg.Public.Storage.Compression)
	if err != nil {
		return nil, err
	}
	c := codec.New(tag)

	switch cfg.Public.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "fs":
		return fs.New(cfg.Public.Storage.Path, c)
	case "pebble":
		return pebble.New(cfg.Public.Storage.Path, c)
	case "sqlite":
		return sqlite.New(cfg.Public.Storage.Path, c)
	case "pg":
		return pg.New(ctx, cfg, c)
	case "redis":
		return redis.New(ctx, cfg.Private.Redis, c)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Public.Storage.Driver)
	}
}

// ApplySeed merges the directory seed file into the stored snapshot.
func ApplySeed(ctx context.Context, store service.SnapshotStore, path string) error {
	seed, err := directory.LoadSeed(path)
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := seed.Apply(snap); err != nil {
		return fmt.Errorf("apply seed %s: %w", path, err)
	}
	if err := store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Log.Info("directory seed applied",
		"path", path,
		"users", len(seed.Users),
		"channels", len(seed.Channels),
		"dms", len(seed.Dms))
	return nil
}

func limitsFrom(cfg *config.Config) service.Limits {
	m := cfg.Public.Messages
	return service.Limits{
		PageSize:           m.PageSize,
		NotificationsLimit: m.NotificationsLimit,
		MaxLength:          m.MaxLength,
		TagPreviewLength:   m.TagPreviewLength,
	}
}

type storePing struct {
	store service.SnapshotStore
}

func (p storePing) Ping(ctx context.Context) error {
	_, err := p.store.Load(ctx)
	return err
}

func oracle(snap *domain.Snapshot) service.Oracle { return directory.New(snap) }

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Public.Storage.Driver, err)
	}

	if cfg.Public.DirectorySeed != "" {
		if err := ApplySeed(ctx, store, cfg.Public.DirectorySeed); err != nil {
			store.Close()
			return nil, err
		}
	}

	limits := limitsFrom(cfg)
	tx := service.NewTransactor(store, oracle, time.Now)
	sched := scheduler.New(time.Now)

	message := service.NewMessage(tx, limits)
	standup := service.NewStandup(tx, sched, limits)
	notifications := service.NewNotificationFeed(tx, limits)
	search := service.NewSearch(tx, limits)

	h := handler.New(message, standup, notifications, search, markdown.New(), storePing{store})
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	return &Dependencies{
		Config:         cfg,
		Store:          store,
		Scheduler:      sched,
		Standup:        standup,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtService),
	}, nil
}

func (d *Dependencies) Close() error {
	return d.Store.Close()
}
