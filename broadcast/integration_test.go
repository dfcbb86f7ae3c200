package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/testkit"
)

// 两个执行上下文共用同一个外部消息系统，a 发布的变更只被 b 收到
func runCrossContext(t *testing.T, cfg broadcast.Config, opt broadcast.Option) {
	t.Helper()
	kit := testkit.NewKit(t)

	open := func(origin string) broadcast.Channel {
		c := cfg
		ch, err := broadcast.New(&c, opt, broadcast.WithOrigin(origin), broadcast.WithLogger(kit.Logger))
		require.NoError(t, err)
		t.Cleanup(func() { _ = ch.Close() })
		return ch
	}
	a, b := open("cli"), open("serve")

	var mu sync.Mutex
	var got []broadcast.Notification
	record := func(_ context.Context, n broadcast.Notification) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
	}
	_, err := a.Subscribe(kit.Ctx, "rickandmorty_favorites", record)
	require.NoError(t, err)
	_, err = b.Subscribe(kit.Ctx, "rickandmorty_favorites", record)
	require.NoError(t, err)

	value := `["1","2"]`
	require.NoError(t, a.Publish(kit.Ctx, "rickandmorty_favorites", &value))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 5*time.Second, 10*time.Millisecond)

	// 给自身回环留出时间，确认 a 没有收到自己的消息
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "cli", got[0].Origin)
	require.NotNil(t, got[0].NewValue)
	assert.Equal(t, value, *got[0].NewValue)
}

func TestNATSChannel_CrossContext(t *testing.T) {
	conn := testkit.NewNATSContainerConnector(t)
	runCrossContext(t, broadcast.Config{
		Driver:     broadcast.DriverNATS,
		Prefix:     "portalgun.test." + testkit.NewID(),
		Serializer: "msgpack",
	}, broadcast.WithNATS(conn))
}

func TestRedisChannel_CrossContext(t *testing.T) {
	conn := testkit.NewRedisContainerConnector(t)
	runCrossContext(t, broadcast.Config{
		Driver: broadcast.DriverRedis,
		Prefix: "portalgun:test:" + testkit.NewID(),
	}, broadcast.WithRedis(conn))
}
