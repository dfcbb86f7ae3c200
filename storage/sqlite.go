package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/xerrors"
)

// kvEntry kv_entries 表的一行
type kvEntry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

type sqliteStorage struct {
	conn connector.SQLiteConnector
}

// NewSQLite 基于已连接的 SQLite 连接器创建存储，首次使用时自动建表
func NewSQLite(conn connector.SQLiteConnector) (Storage, error) {
	if conn == nil {
		return nil, ErrConnectorRequired
	}
	return newSQLite(conn)
}

func newSQLite(conn connector.SQLiteConnector) (*sqliteStorage, error) {
	db := conn.GetClient()
	if db == nil {
		return nil, xerrors.Wrap(connector.ErrNotConnected, "storage: sqlite")
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, xerrors.Wrap(err, "storage: migrate kv_entries")
	}
	return &sqliteStorage{conn: conn}, nil
}

func (s *sqliteStorage) db(ctx context.Context) (*gorm.DB, error) {
	db := s.conn.GetClient()
	if db == nil {
		return nil, ErrClosed
	}
	return db.WithContext(ctx), nil
}

func (s *sqliteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return "", false, err
	}
	var e kvEntry
	err = db.Where("kv_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, xerrors.Wrapf(err, "storage: get %s", key)
	}
	return e.Value, true, nil
}

func (s *sqliteStorage) Set(ctx context.Context, key, value string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return xerrors.Wrapf(err, "storage: set %s", key)
}

func (s *sqliteStorage) Remove(ctx context.Context, key string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	err = db.Where("kv_key = ?", key).Delete(&kvEntry{}).Error
	return xerrors.Wrapf(err, "storage: remove %s", key)
}

// Close 连接器由调用方关闭
func (s *sqliteStorage) Close() error { return nil }
