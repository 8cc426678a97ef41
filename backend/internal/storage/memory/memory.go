// Package memory keeps the snapshot in process. Used by tests and by the
// "memory" storage driver for throwaway instances.
package memory

import (
	"context"
	"sync"

	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/domain"
)

type Storage struct {
	mu    sync.Mutex
	codec *codec.Codec
	data  []byte
	saves int
}

var _ service.SnapshotStore = (*Storage)(nil)

// New stores encoded bytes rather than the pointer so every Load returns an
// independent copy, same as a real backend.
func New() *Storage {
	return &Storage{codec: codec.New(codec.CompressionNone)}
}

func (s *Storage) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return domain.NewSnapshot(), nil
	}
	return s.codec.Decode(s.data)
}

func (s *Storage) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Encode(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *Storage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Storage) Close() error { return nil }
