// Package storage 提供持久化的字符串键值存储，对应浏览器里的 localStorage。
//
// 三个驱动：
//   - memory: otter 内存表，进程退出即丢失，用于测试和一次性运行
//   - sqlite: gorm + SQLite 文件，表名 kv_entries，多个进程可共享同一个文件
//   - redis:  go-redis，可选键前缀，多台设备共享状态时使用
//
// 值总是完整的字符串，存储层不理解其内容；编解码由 persist 完成。
//
//	st, _ := storage.New(&storage.Config{Driver: storage.DriverSQLite}, storage.WithSQLite(conn))
//	raw, ok, err := st.Get(ctx, storage.KeyFavorites)
package storage

import "context"

// 固定的存储键
const (
	KeyFavorites        = "rickandmorty_favorites"
	KeyDeleted          = "rickandmorty_deleted"
	KeyComments         = "rickandmorty_comments"
	KeyInstallDismissed = "pwa_install_dismissed"
)

// Storage 持久化键值存储，方法并发安全
type Storage interface {
	// Get 读取键。键不存在时返回 ok=false 且 err 为 nil。
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 同步写入，返回时数据已落盘（或已被远端确认）
	Set(ctx context.Context, key, value string) error

	// Remove 删除键，键不存在不报错
	Remove(ctx context.Context, key string) error

	// Close 释放驱动自身持有的资源。借用的连接器不在此关闭。
	Close() error
}
