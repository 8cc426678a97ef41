package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/logger"
)

const snapshotFile = "snapshot.bin"

type Storage struct {
	rootPath string
	codec    *codec.Codec
}

// Ensure Storage struct implements the interface at compile time.
var _ service.SnapshotStore = (*Storage)(nil)

func New(rootPath string, c *codec.Codec) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "data/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p, codec: c}, nil
}

func (s *Storage) path() string {
	return filepath.Join(s.rootPath, snapshotFile)
}

func (s *Storage) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return s.codec.Decode(data)
}

// Save writes to a temp file in the same directory and renames it over the
// previous snapshot, so readers see either the old or the new one.
func (s *Storage) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Encode(snapshot)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.rootPath, snapshotFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path()); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	logger.Log.Debug("snapshot saved", "component", "storage.fs", "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (s *Storage) Close() error { return nil }
