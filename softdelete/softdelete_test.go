package softdelete

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/favorites"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/persist"
	"github.com/ceyewan/portalgun/storage"
)

func newStorage(t *testing.T) storage.Storage {
	t.Helper()
	st, err := storage.NewMemory(0)
	require.NoError(t, err)
	return st
}

func TestMarkAndRestore(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, newStorage(t), nil)
	require.NoError(t, err)

	s.MarkAsDeleted(ctx, "1")
	assert.True(t, s.IsDeleted("1"))
	s.MarkAsDeleted(ctx, "1")
	assert.Equal(t, 1, s.Count(), "重复删除不变")

	s.Restore(ctx, "1")
	assert.False(t, s.IsDeleted("1"))
	assert.Zero(t, s.Count())
}

func TestRestoreNeverDeleted(t *testing.T) {
	ctx := context.Background()
	st := newStorage(t)
	s, err := New(ctx, st, nil)
	require.NoError(t, err)
	s.MarkAsDeleted(ctx, "2")

	var notified bool
	cancel := s.Watch(func(model.IDSet) { notified = true })
	defer cancel()

	s.Restore(ctx, "99")
	assert.Equal(t, []model.CharacterID{"2"}, s.IDs())
	assert.False(t, notified, "恢复未删除的角色是空操作")
}

func TestRestoreDoesNotTouchFavorites(t *testing.T) {
	ctx := context.Background()
	st := newStorage(t)
	deleted, err := New(ctx, st, nil)
	require.NoError(t, err)
	favs, err := favorites.New(ctx, st, nil)
	require.NoError(t, err)

	favs.Add(ctx, "5")
	deleted.MarkAsDeleted(ctx, "5")
	deleted.Restore(ctx, "5")

	assert.True(t, favs.IsFavorite("5"))
}

func TestRestoreAll(t *testing.T) {
	ctx := context.Background()
	st := newStorage(t)
	s, err := New(ctx, st, nil)
	require.NoError(t, err)

	s.MarkAsDeleted(ctx, "1")
	s.MarkAsDeleted(ctx, "3")
	assert.Equal(t, 2, s.RestoreAll(ctx))
	assert.Zero(t, s.Count())

	raw, _, err := st.Get(ctx, storage.KeyDeleted)
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
}

func TestRestore_ReadThroughUsesStoredState(t *testing.T) {
	ctx := context.Background()
	st := newStorage(t)

	cli, err := New(ctx, st, nil, persist.WithReadThrough())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	srv, err := New(ctx, st, nil, persist.WithReadThrough())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	cli.MarkAsDeleted(ctx, "3")
	require.False(t, srv.IsDeleted("3"))

	srv.Restore(ctx, "3")
	assert.False(t, srv.IsDeleted("3"))
	cli.MarkAsDeleted(ctx, "4")
	assert.Equal(t, []model.CharacterID{"4"}, cli.IDs(), "恢复写入存储，其他进程可见")
}
