// Package comments 管理每个角色的本地评论。
//
// 评论按角色分组，新评论插在最前面。编辑只替换文本，
// id、characterId、createdAt、author 保持不变。
// 状态保存在存储键 rickandmorty_comments 下。
package comments

import (
	"context"
	"time"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/persist"
	"github.com/ceyewan/portalgun/storage"
	"github.com/ceyewan/portalgun/xerrors"
)

// Service 评论存储，并发安全
type Service struct {
	store *persist.Store[model.CommentStore]
	now   func() time.Time
	newID func() model.CommentID
}

// New 从存储加载评论并订阅其他上下文的变更
func New(ctx context.Context, st storage.Storage, ch broadcast.Channel, opts ...persist.Option) (*Service, error) {
	store, err := persist.New[model.CommentStore](ctx, storage.KeyComments, persist.CommentsCodec{}, st, ch, opts...)
	if err != nil {
		return nil, err
	}
	return &Service{
		store: store,
		now:   time.Now,
		newID: model.NewRandomCommentID,
	}, nil
}

// Add 校验并添加评论，校验失败时不做任何持久化
func (s *Service) Add(ctx context.Context, characterID model.CharacterID, text, author string) (model.Comment, error) {
	if characterID == "" {
		return model.Comment{}, xerrors.Wrap(model.ErrEmptyID, "comments: character")
	}
	text, err := ValidateText(text)
	if err != nil {
		return model.Comment{}, err
	}
	author, err = ValidateAuthor(author)
	if err != nil {
		return model.Comment{}, err
	}

	c := model.Comment{
		ID:          s.newID(),
		CharacterID: characterID,
		Text:        text,
		Author:      author,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}
	s.store.Mutate(ctx, func(cur model.CommentStore) model.CommentStore {
		next := cur.Clone()
		next[characterID] = append([]model.Comment{c}, cur[characterID]...)
		return next
	})
	return c, nil
}

// Update 替换评论文本，返回更新后的评论
func (s *Service) Update(ctx context.Context, characterID model.CharacterID, commentID model.CommentID, text string) (model.Comment, error) {
	text, err := ValidateText(text)
	if err != nil {
		return model.Comment{}, err
	}

	var updated model.Comment
	_, err = s.store.Update(ctx, func(cur model.CommentStore) (model.CommentStore, error) {
		idx := indexOf(cur[characterID], commentID)
		if idx < 0 {
			return nil, xerrors.Wrapf(ErrCommentNotFound, "%s/%s", characterID, commentID)
		}
		next := cur.Clone()
		next[characterID][idx].Text = text
		updated = next[characterID][idx]
		return next, nil
	})
	return updated, err
}

// Delete 删除一条评论，不存在时不报错。角色的最后一条评论被删除后保留空列表。
func (s *Service) Delete(ctx context.Context, characterID model.CharacterID, commentID model.CommentID) {
	s.store.Update(ctx, func(cur model.CommentStore) (model.CommentStore, error) {
		if indexOf(cur[characterID], commentID) < 0 {
			return cur, persist.ErrUnchanged
		}
		next := cur.Clone()
		list := make([]model.Comment, 0, len(cur[characterID]))
		for _, c := range cur[characterID] {
			if c.ID != commentID {
				list = append(list, c)
			}
		}
		next[characterID] = list
		return next, nil
	})
}

// DeleteAllForCharacter 删除角色的全部评论，连同键一起移除
func (s *Service) DeleteAllForCharacter(ctx context.Context, characterID model.CharacterID) {
	s.store.Update(ctx, func(cur model.CommentStore) (model.CommentStore, error) {
		if _, ok := cur[characterID]; !ok {
			return cur, persist.ErrUnchanged
		}
		next := cur.Clone()
		delete(next, characterID)
		return next, nil
	})
}

// List 角色的评论，新的在前。返回副本。
func (s *Service) List(characterID model.CharacterID) []model.Comment {
	list := s.store.Get()[characterID]
	if len(list) == 0 {
		return []model.Comment{}
	}
	return append([]model.Comment(nil), list...)
}

// Get 查找单条评论
func (s *Service) Get(characterID model.CharacterID, commentID model.CommentID) (model.Comment, error) {
	list := s.store.Get()[characterID]
	if idx := indexOf(list, commentID); idx >= 0 {
		return list[idx], nil
	}
	return model.Comment{}, xerrors.Wrapf(ErrCommentNotFound, "%s/%s", characterID, commentID)
}

func (s *Service) Count(characterID model.CharacterID) int { return len(s.store.Get()[characterID]) }

func (s *Service) Total() int { return s.store.Get().Total() }

// All 全部评论的快照，调用方不得修改
func (s *Service) All() model.CommentStore { return s.store.Get() }

func (s *Service) Watch(fn func(model.CommentStore)) (cancel func()) { return s.store.Watch(fn) }

func (s *Service) Close() error { return s.store.Close() }

func indexOf(list []model.Comment, id model.CommentID) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}
