package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/storage"
	"github.com/ceyewan/portalgun/testkit"
)

func TestRedisStorage(t *testing.T) {
	kit := testkit.NewKit(t)
	conn := testkit.NewRedisContainerConnector(t)

	st, err := storage.New(&storage.Config{Driver: storage.DriverRedis, Prefix: testkit.NewID() + ":"},
		storage.WithRedis(conn), storage.WithLogger(kit.Logger), storage.WithMeter(kit.Meter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, ok, err := st.Get(kit.Ctx, storage.KeyDeleted)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(kit.Ctx, storage.KeyDeleted, `["3"]`))
	v, ok, err := st.Get(kit.Ctx, storage.KeyDeleted)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["3"]`, v)

	require.NoError(t, st.Remove(kit.Ctx, storage.KeyDeleted))
	require.NoError(t, st.Remove(kit.Ctx, storage.KeyDeleted), "删除不存在的键不报错")
	_, ok, err = st.Get(kit.Ctx, storage.KeyDeleted)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorage_ViaFactory(t *testing.T) {
	kit := testkit.NewKit(t)
	st, err := storage.New(&storage.Config{Driver: storage.DriverSQLite},
		storage.WithSQLite(testkit.NewSQLiteConnector(t)), storage.WithMeter(kit.Meter))
	require.NoError(t, err)

	require.NoError(t, st.Set(kit.Ctx, storage.KeyComments, `{}`))
	require.NoError(t, st.Set(kit.Ctx, storage.KeyComments, `{"1":[]}`))
	v, ok, err := st.Get(kit.Ctx, storage.KeyComments)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"1":[]}`, v, "重复写入覆盖旧值")
}
