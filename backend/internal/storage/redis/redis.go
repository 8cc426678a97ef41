// Package redis keeps the snapshot under a single redis key, for deployments
// that already run redis and have no local disk.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"

	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/config"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/logger"
)

const defaultKey = "parley:snapshot"

type Storage struct {
	client *redis.Client
	key    string
	codec  *codec.Codec
}

var _ service.SnapshotStore = (*Storage)(nil)

func New(ctx context.Context, cfg config.Redis, c *codec.Codec) (*Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	key := cfg.Key
	if key == "" {
		key = defaultKey
	}
	logger.Log.Info("redis connected", "component", "storage.redis", "addr", cfg.Addr, "key", key)
	return &Storage{client: client, key: key, codec: c}, nil
}

func (s *Storage) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return s.codec.Decode(data)
}

func (s *Storage) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Encode(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	logger.Log.Debug("snapshot saved", "component", "storage.redis", "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
