// Package softdelete 管理被本地隐藏（软删除）的角色。
//
// 每个角色只有两种状态：可见与已删除，可以随时来回切换，不保留历史。
// 状态保存在存储键 rickandmorty_deleted 下。
package softdelete

import (
	"context"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/persist"
	"github.com/ceyewan/portalgun/storage"
)

// Service 已删除集合，并发安全
type Service struct {
	store *persist.Store[model.IDSet]
}

// New 从存储加载并订阅其他上下文的变更
func New(ctx context.Context, st storage.Storage, ch broadcast.Channel, opts ...persist.Option) (*Service, error) {
	store, err := persist.New[model.IDSet](ctx, storage.KeyDeleted, persist.IDSetCodec{}, st, ch, opts...)
	if err != nil {
		return nil, err
	}
	return &Service{store: store}, nil
}

// MarkAsDeleted visible -> deleted，已删除时不变
func (s *Service) MarkAsDeleted(ctx context.Context, id model.CharacterID) {
	s.store.Update(ctx, func(cur model.IDSet) (model.IDSet, error) {
		if cur.Has(id) {
			return cur, persist.ErrUnchanged
		}
		return cur.With(id), nil
	})
}

// Restore deleted -> visible，未删除时不变。不影响收藏。
func (s *Service) Restore(ctx context.Context, id model.CharacterID) {
	s.store.Update(ctx, func(cur model.IDSet) (model.IDSet, error) {
		if !cur.Has(id) {
			return cur, persist.ErrUnchanged
		}
		return cur.Without(id), nil
	})
}

// RestoreAll 恢复全部，返回恢复的数量
func (s *Service) RestoreAll(ctx context.Context) int {
	var n int
	s.store.Mutate(ctx, func(cur model.IDSet) model.IDSet {
		n = cur.Len()
		return model.IDSet{}
	})
	return n
}

func (s *Service) IsDeleted(id model.CharacterID) bool { return s.store.Get().Has(id) }

// Set 当前快照，调用方不得修改
func (s *Service) Set() model.IDSet { return s.store.Get() }

func (s *Service) IDs() []model.CharacterID { return s.store.Get().Slice() }

func (s *Service) Count() int { return s.store.Get().Len() }

func (s *Service) Watch(fn func(model.IDSet)) (cancel func()) { return s.store.Watch(fn) }

func (s *Service) Close() error { return s.store.Close() }
