package persist

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ceyewan/portalgun/model"
)

// Codec 状态与存储字符串之间的转换
type Codec[T any] interface {
	Encode(v T) (string, error)
	Decode(raw string) (T, error)
	// Empty 缺失或损坏时使用的初始值
	Empty() T
}

// Inspector Codec 可选实现：返回解码结果中被宽松处理的记录描述，Store 会逐条记录告警
type Inspector[T any] interface {
	Inspect(v T) []string
}

// IDSetCodec 将 IDSet 编码为有序的 JSON 字符串数组，如 ["1","2"]
type IDSetCodec struct{}

func (IDSetCodec) Encode(s model.IDSet) (string, error) {
	ids := s.Slice()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	b, err := json.Marshal(out)
	return string(b), err
}

// Decode 忽略数组中的空串
func (IDSetCodec) Decode(raw string) (model.IDSet, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	s := make(model.IDSet, len(ids))
	for _, v := range ids {
		if id, err := model.NewCharacterID(v); err == nil {
			s[id] = struct{}{}
		}
	}
	return s, nil
}

func (IDSetCodec) Empty() model.IDSet { return model.IDSet{} }

// CommentsCodec 将 CommentStore 编码为 characterId -> 评论数组 的 JSON 对象
type CommentsCodec struct{}

func (CommentsCodec) Encode(s model.CommentStore) (string, error) {
	if s == nil {
		s = model.CommentStore{}
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (CommentsCodec) Decode(raw string) (model.CommentStore, error) {
	var s model.CommentStore
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	if s == nil {
		return model.CommentStore{}, nil
	}
	return s, nil
}

func (CommentsCodec) Empty() model.CommentStore { return model.CommentStore{} }

// Inspect 报告 createdAt 无法解析的评论，这些评论以零值时间保留
func (CommentsCodec) Inspect(s model.CommentStore) []string {
	var problems []string
	for characterID, list := range s {
		for _, c := range list {
			if c.CreatedAt.IsZero() {
				problems = append(problems, fmt.Sprintf("comment %s of character %s: unreadable createdAt", c.ID, characterID))
			}
		}
	}
	sort.Strings(problems)
	return problems
}
