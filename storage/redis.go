package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/xerrors"
)

type redisStorage struct {
	conn   connector.RedisConnector
	prefix string
}

// NewRedis 基于 Redis 连接器创建存储，键写入为 prefix+key，不设过期时间
func NewRedis(conn connector.RedisConnector, prefix string) (Storage, error) {
	if conn == nil {
		return nil, ErrConnectorRequired
	}
	return newRedis(conn, prefix), nil
}

func newRedis(conn connector.RedisConnector, prefix string) *redisStorage {
	return &redisStorage{conn: conn, prefix: prefix}
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.conn.GetClient().Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, xerrors.Wrapf(err, "storage: get %s", key)
	}
	return v, true, nil
}

func (s *redisStorage) Set(ctx context.Context, key, value string) error {
	err := s.conn.GetClient().Set(ctx, s.prefix+key, value, 0).Err()
	return xerrors.Wrapf(err, "storage: set %s", key)
}

func (s *redisStorage) Remove(ctx context.Context, key string) error {
	err := s.conn.GetClient().Del(ctx, s.prefix+key).Err()
	return xerrors.Wrapf(err, "storage: remove %s", key)
}

func (s *redisStorage) Close() error { return nil }
