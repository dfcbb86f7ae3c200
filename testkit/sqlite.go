package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/connector"
)

// NewSQLiteConfig 返回位于临时目录的 SQLite 配置，测试结束后文件随目录删除
func NewSQLiteConfig(t *testing.T) *connector.SQLiteConfig {
	return &connector.SQLiteConfig{
		Name: "test-sqlite",
		Path: filepath.Join(t.TempDir(), "portalgun.db"),
	}
}

// NewSQLiteConnector 创建并连接 SQLite 连接器
func NewSQLiteConnector(t *testing.T) connector.SQLiteConnector {
	return OpenSQLite(t, NewSQLiteConfig(t))
}

// OpenSQLite 按配置打开连接器，多个连接器可以共享同一个文件
func OpenSQLite(t *testing.T, cfg *connector.SQLiteConfig) connector.SQLiteConnector {
	conn, err := connector.NewSQLite(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")
	require.NoError(t, conn.Connect(context.Background()), "failed to connect to sqlite")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
