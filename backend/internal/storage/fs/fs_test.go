package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/domain"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := New(dir, codec.New(codec.CompressionZstd))
	require.NoError(t, err)

	t.Run("missing file loads empty snapshot", func(t *testing.T) {
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Channels)
	})

	t.Run("save then load from a new instance", func(t *testing.T) {
		snap := domain.NewSnapshot()
		snap.NextMessageId = 7
		snap.Channels[1] = &domain.Channel{Id: 1, Name: "general", Members: []domain.UserId{1}}
		require.NoError(t, s.Save(ctx, snap))

		reopened, err := New(dir, codec.New(codec.CompressionNone))
		require.NoError(t, err)
		got, err := reopened.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.MsgId(7), got.NextMessageId)
		assert.Equal(t, "general", got.Channels[1].Name)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, snapshotFile, entries[0].Name())
	})

	t.Run("corrupt file is reported", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, snapshotFile), []byte("garbage"), 0o600))
		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, codec.ErrCorrupt)
	})
}
