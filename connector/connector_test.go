package connector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/xerrors"
)

func TestRedisConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RedisConfig
		wantErr bool
	}{
		{"有效配置", RedisConfig{Addr: "127.0.0.1:6379"}, false},
		{"缺少地址", RedisConfig{}, true},
		{"负数 DB", RedisConfig{Addr: "127.0.0.1:6379", DB: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
				assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "default", tt.cfg.Name)
			assert.Equal(t, 10, tt.cfg.PoolSize)
			assert.Equal(t, 5*time.Second, tt.cfg.DialTimeout)
		})
	}
}

func TestNATSConfigValidation(t *testing.T) {
	cfg := NATSConfig{}
	assert.ErrorIs(t, cfg.validate(), ErrConfig)

	cfg = NATSConfig{URL: "nats://127.0.0.1:4222"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, 60, cfg.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.ReconnectWait)
	assert.Equal(t, 2, cfg.MaxPingsOut)
}

func TestSQLiteConfig(t *testing.T) {
	cfg := SQLiteConfig{}
	require.NoError(t, cfg.validate())
	assert.Equal(t, "portalgun.db", cfg.Path)
	assert.Equal(t, "portalgun.db?_busy_timeout=5000&_journal_mode=WAL", cfg.dsn())

	mem := SQLiteConfig{Path: ":memory:"}
	require.NoError(t, mem.validate())
	assert.Equal(t, ":memory:", mem.dsn())

	bad := SQLiteConfig{BusyTimeout: -time.Second}
	assert.ErrorIs(t, bad.validate(), ErrConfig)
}

func TestNilConfig(t *testing.T) {
	_, err := NewRedis(nil)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewNATS(nil)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewSQLite(nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestSQLiteConnector(t *testing.T) {
	ctx := context.Background()
	conn, err := NewSQLite(&SQLiteConfig{Name: "local", Path: filepath.Join(t.TempDir(), "kv.db")},
		WithLogger(clog.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "local", conn.Name())

	assert.ErrorIs(t, conn.HealthCheck(ctx), ErrNotConnected)
	assert.Nil(t, conn.GetClient())

	require.NoError(t, conn.Connect(ctx))
	require.NoError(t, conn.Connect(ctx), "Connect 幂等")
	assert.True(t, conn.IsHealthy())
	require.NotNil(t, conn.GetClient())
	require.NoError(t, conn.HealthCheck(ctx))

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "Close 幂等")
	assert.False(t, conn.IsHealthy())
	assert.ErrorIs(t, conn.HealthCheck(ctx), ErrNotConnected)
}

func TestNATSConnector_NotConnected(t *testing.T) {
	m, err := metrics.New(metrics.NewDevDefaultConfig("connector-test"))
	require.NoError(t, err)

	conn, err := NewNATS(&NATSConfig{URL: "nats://127.0.0.1:4222"}, WithMeter(m))
	require.NoError(t, err)

	assert.Nil(t, conn.GetClient())
	assert.False(t, conn.IsHealthy())
	assert.ErrorIs(t, conn.HealthCheck(context.Background()), ErrNotConnected)
	assert.NoError(t, conn.Close())
}

func TestRedisConnector_Lifecycle(t *testing.T) {
	conn, err := NewRedis(&RedisConfig{Name: "cache", Addr: "127.0.0.1:6379"})
	require.NoError(t, err)
	assert.Equal(t, "cache", conn.Name())
	assert.NotNil(t, conn.GetClient())
	assert.False(t, conn.IsHealthy())

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Connect(context.Background()), ErrNotConnected)
	assert.ErrorIs(t, conn.HealthCheck(context.Background()), ErrNotConnected)
}
