// Package pebble persists the snapshot as a single key in an embedded
// pebble database. This is the default driver.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/dustin/go-humanize"

	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/logger"
)

var snapshotKey = []byte("snapshot/current")

type Storage struct {
	db    *pebble.DB
	codec *codec.Codec
}

var _ service.SnapshotStore = (*Storage)(nil)

func New(path string, c *codec.Codec) (*Storage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	logger.Log.Info("pebble opened", "component", "storage.pebble", "path", path)
	return &Storage{db: db, codec: c}, nil
}

func (s *Storage) Load(ctx context.Context) (*domain.Snapshot, error) {
	value, closer, err := s.db.Get(snapshotKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return domain.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()
	// value is only valid until closer.Close; Decode copies what it keeps.
	return s.codec.Decode(value)
}

func (s *Storage) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Encode(snapshot)
	if err != nil {
		return err
	}
	if err := s.db.Set(snapshotKey, data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	logger.Log.Debug("snapshot saved", "component", "storage.pebble", "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
