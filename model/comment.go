package model

import (
	"encoding/json"
	"time"
)

// CommentTimeFormat createdAt 的序列化格式（ISO-8601，毫秒，UTC）
const CommentTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// commentTimeLayouts 解析 createdAt 时依次尝试的格式
var commentTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseCommentTime 解析 createdAt，无法识别时返回零值和 false
func ParseCommentTime(s string) (time.Time, bool) {
	for _, layout := range commentTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Comment 角色评论
type Comment struct {
	ID          CommentID
	CharacterID CharacterID
	Text        string
	Author      string
	CreatedAt   time.Time
}

type commentJSON struct {
	ID          CommentID   `json:"id"`
	CharacterID CharacterID `json:"characterId"`
	Text        string      `json:"text"`
	Author      string      `json:"author"`
	CreatedAt   string      `json:"createdAt"`
}

func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(commentJSON{
		ID:          c.ID,
		CharacterID: c.CharacterID,
		Text:        c.Text,
		Author:      c.Author,
		CreatedAt:   c.CreatedAt.UTC().Format(CommentTimeFormat),
	})
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw commentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// 无法识别的 createdAt 保留为零值
	createdAt, _ := ParseCommentTime(raw.CreatedAt)
	*c = Comment{
		ID:          raw.ID,
		CharacterID: raw.CharacterID,
		Text:        raw.Text,
		Author:      raw.Author,
		CreatedAt:   createdAt,
	}
	return nil
}

// CommentStore characterId -> 评论列表（新的在前）
type CommentStore map[CharacterID][]Comment

// Clone 浅拷贝 map 与各切片，评论本身是值类型
func (s CommentStore) Clone() CommentStore {
	out := make(CommentStore, len(s))
	for k, v := range s {
		out[k] = append([]Comment(nil), v...)
	}
	return out
}

// Total 所有角色的评论总数
func (s CommentStore) Total() int {
	n := 0
	for _, v := range s {
		n += len(v)
	}
	return n
}
