package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/parley-chat/parley/shared/errors"
)

func TestSearch(t *testing.T) {
	f := newFixture(t)
	inGeneral := f.send(t, general, bob, "deploy at noon")
	f.clock.Advance(time.Second)
	inDm := f.send(t, dmAB, alice, "deploy went fine")
	f.clock.Advance(time.Second)
	f.send(t, random, eve, "deploy random")
	removed := f.send(t, general, bob, "deploy rollback")
	require.NoError(t, f.messages.Remove(f.ctx, removed, bob))
	_, err := f.messages.SendLater(f.ctx, general, bob, "deploy tomorrow", f.clock.Unix()+3600)
	require.NoError(t, err)

	t.Run("only containers the user is in", func(t *testing.T) {
		hits, err := f.search.Search(f.ctx, alice, "deploy")
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, inDm, hits[0].Id)
		assert.Equal(t, inGeneral, hits[1].Id)
	})

	t.Run("case sensitive", func(t *testing.T) {
		hits, err := f.search.Search(f.ctx, alice, "Deploy")
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("query length", func(t *testing.T) {
		_, err := f.search.Search(f.ctx, alice, "")
		assert.True(t, internal_errors.IsInvalidArgument(err))

		_, err = f.search.Search(f.ctx, alice, strings.Repeat("q", 1001))
		assert.True(t, internal_errors.IsInvalidArgument(err))
	})
}
