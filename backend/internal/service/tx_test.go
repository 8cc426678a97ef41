package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/shared/domain"
)

func TestTransactor(t *testing.T) {
	t.Run("failed update saves nothing", func(t *testing.T) {
		f := newFixture(t)
		before := f.store.data.NextMessageId
		boom := errors.New("boom")

		err := f.tx.Update(f.ctx, func(tx *Tx) error {
			tx.Snap.AllocateMessageId()
			tx.Snap.Notify(alice, domain.Notification{Text: "x"})
			return boom
		})

		require.ErrorIs(t, err, boom)
		assert.Equal(t, 0, f.store.saves)
		assert.Equal(t, before, f.store.data.NextMessageId)
		assert.Empty(t, f.store.data.Notifications)
	})

	t.Run("view discards changes", func(t *testing.T) {
		f := newFixture(t)
		err := f.tx.View(f.ctx, func(tx *Tx) error {
			tx.Snap.AllocateMessageId()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 0, f.store.saves)
		assert.Equal(t, domain.MsgId(0), f.store.data.NextMessageId)
	})

	t.Run("load error", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("unreachable")
		f.store.LoadFunc = func(ctx context.Context) (*domain.Snapshot, error) { return nil, boom }

		err := f.tx.Update(f.ctx, func(tx *Tx) error {
			t.Fatal("fn must not run")
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "load snapshot")
	})

	t.Run("message ids keep increasing after removal", func(t *testing.T) {
		f := newFixture(t)
		a := f.send(t, general, alice, "a")
		require.NoError(t, f.messages.Remove(f.ctx, a, alice))
		b := f.send(t, general, alice, "b")
		assert.Greater(t, b, a)
	})
}
