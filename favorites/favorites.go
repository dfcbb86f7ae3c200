// Package favorites 管理本地收藏的角色集合。
//
// 状态保存在存储键 rickandmorty_favorites 下，格式为 JSON 字符串数组，
// 通过 broadcast 与其他上下文同步。
package favorites

import (
	"context"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/persist"
	"github.com/ceyewan/portalgun/storage"
)

// Service 收藏集合，并发安全
type Service struct {
	store *persist.Store[model.IDSet]
}

// New 从存储加载收藏并订阅其他上下文的变更。ch 为 nil 时只在本地生效。
func New(ctx context.Context, st storage.Storage, ch broadcast.Channel, opts ...persist.Option) (*Service, error) {
	store, err := persist.New[model.IDSet](ctx, storage.KeyFavorites, persist.IDSetCodec{}, st, ch, opts...)
	if err != nil {
		return nil, err
	}
	return &Service{store: store}, nil
}

// Toggle 切换收藏状态，返回切换后是否处于收藏中。连续调用两次回到原状态。
func (s *Service) Toggle(ctx context.Context, id model.CharacterID) bool {
	var now bool
	s.store.Mutate(ctx, func(cur model.IDSet) model.IDSet {
		if cur.Has(id) {
			now = false
			return cur.Without(id)
		}
		now = true
		return cur.With(id)
	})
	return now
}

// Add 加入收藏，已收藏时不变
func (s *Service) Add(ctx context.Context, id model.CharacterID) {
	s.store.Update(ctx, func(cur model.IDSet) (model.IDSet, error) {
		if cur.Has(id) {
			return cur, persist.ErrUnchanged
		}
		return cur.With(id), nil
	})
}

// Remove 取消收藏，未收藏时不变
func (s *Service) Remove(ctx context.Context, id model.CharacterID) {
	s.store.Update(ctx, func(cur model.IDSet) (model.IDSet, error) {
		if !cur.Has(id) {
			return cur, persist.ErrUnchanged
		}
		return cur.Without(id), nil
	})
}

// Clear 清空收藏
func (s *Service) Clear(ctx context.Context) {
	s.store.Mutate(ctx, func(model.IDSet) model.IDSet { return model.IDSet{} })
}

func (s *Service) IsFavorite(id model.CharacterID) bool { return s.store.Get().Has(id) }

// Set 当前收藏快照，调用方不得修改
func (s *Service) Set() model.IDSet { return s.store.Get() }

// IDs 排序后的收藏 ID
func (s *Service) IDs() []model.CharacterID { return s.store.Get().Slice() }

func (s *Service) Count() int { return s.store.Get().Len() }

// Watch 订阅收藏变化
func (s *Service) Watch(fn func(model.IDSet)) (cancel func()) { return s.store.Watch(fn) }

// Close 取消跨上下文订阅
func (s *Service) Close() error { return s.store.Close() }
