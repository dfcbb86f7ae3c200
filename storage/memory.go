package storage

import (
	"context"
	"sync/atomic"

	"github.com/maypok86/otter/v2"

	"github.com/ceyewan/portalgun/xerrors"
)

type memoryStorage struct {
	cache  *otter.Cache[string, string]
	closed atomic.Bool
}

// NewMemory 创建内存存储。capacity 为 0 表示不限条目数。
func NewMemory(capacity int) (Storage, error) {
	return newMemory(capacity)
}

func newMemory(capacity int) (*memoryStorage, error) {
	opts := &otter.Options[string, string]{}
	if capacity > 0 {
		opts.MaximumSize = capacity
	}
	cache, err := otter.New(opts)
	if err != nil {
		return nil, xerrors.Wrap(err, "storage: build otter cache")
	}
	return &memoryStorage{cache: cache}, nil
}

func (s *memoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	v, ok := s.cache.GetIfPresent(key)
	return v, ok, nil
}

func (s *memoryStorage) Set(_ context.Context, key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Set(key, value)
	return nil
}

func (s *memoryStorage) Remove(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Invalidate(key)
	return nil
}

func (s *memoryStorage) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.cache.StopAllGoroutines()
	}
	return nil
}
