// Package model 定义角色、评论等领域类型。
//
// 三种 ID 都是独立的具名字符串类型，编译期即可防止混用；
// 构造函数只校验非空。
package model

import (
	"github.com/google/uuid"

	"github.com/ceyewan/portalgun/xerrors"
)

// ErrEmptyID ID 为空
var ErrEmptyID = xerrors.Wrap(xerrors.ErrInvalidInput, "empty id")

// CharacterID 角色 ID，来自上游 API
type CharacterID string

// CommentID 评论 ID，本地生成
type CommentID string

// EpisodeID 剧集 ID
type EpisodeID string

// NewCharacterID 校验并构造角色 ID
func NewCharacterID(s string) (CharacterID, error) {
	if s == "" {
		return "", xerrors.Wrap(ErrEmptyID, "character")
	}
	return CharacterID(s), nil
}

// NewCommentID 校验并构造评论 ID
func NewCommentID(s string) (CommentID, error) {
	if s == "" {
		return "", xerrors.Wrap(ErrEmptyID, "comment")
	}
	return CommentID(s), nil
}

// NewEpisodeID 校验并构造剧集 ID，解码上游剧集列表时使用
func NewEpisodeID(s string) (EpisodeID, error) {
	if s == "" {
		return "", xerrors.Wrap(ErrEmptyID, "episode")
	}
	return EpisodeID(s), nil
}

// NewRandomCommentID 生成 UUIDv4 形式的评论 ID
func NewRandomCommentID() CommentID {
	return CommentID(uuid.NewString())
}

func (id CharacterID) String() string { return string(id) }
func (id CommentID) String() string   { return string(id) }
func (id EpisodeID) String() string   { return string(id) }

// CharacterIDs 将字符串批量转换为 CharacterID，遇到空串报错
func CharacterIDs(ss ...string) ([]CharacterID, error) {
	ids := make([]CharacterID, 0, len(ss))
	for _, s := range ss {
		id, err := NewCharacterID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
