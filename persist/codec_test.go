package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/model"
)

func TestIDSetCodec(t *testing.T) {
	c := IDSetCodec{}

	raw, err := c.Encode(model.NewIDSet("10", "2", "1"))
	require.NoError(t, err)
	assert.Equal(t, `["1","2","10"]`, raw)

	raw, err = c.Encode(c.Empty())
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)

	s, err := c.Decode(`["3","","3","7"]`)
	require.NoError(t, err)
	assert.Equal(t, []model.CharacterID{"3", "7"}, s.Slice())

	_, err = c.Decode(`{"1":true}`)
	assert.Error(t, err)
}

func TestCommentsCodec(t *testing.T) {
	c := CommentsCodec{}

	raw, err := c.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, raw)

	s, err := c.Decode(`null`)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Zero(t, s.Total())

	s, err = c.Decode(`{"1":[{"id":"a","characterId":"1","text":"hey","author":"Morty","createdAt":"2026-01-02T03:04:05.678Z"}]}`)
	require.NoError(t, err)
	require.Len(t, s["1"], 1)
	assert.Equal(t, "Morty", s["1"][0].Author)
	assert.Equal(t, 678, s["1"][0].CreatedAt.Nanosecond()/1_000_000)

	_, err = c.Decode(`[]`)
	assert.Error(t, err)
}

// 单条评论的 createdAt 无法识别时，整份文档仍然可以加载
func TestCommentsCodec_MixedQuality(t *testing.T) {
	c := CommentsCodec{}
	raw := `{
		"1":[{"id":"a","characterId":"1","text":"keep me","author":"Rick","createdAt":"2024-05-01T12:30:00.000Z"}],
		"2":[{"id":"b","characterId":"2","text":"odd date","author":"Morty","createdAt":"2024-05-01 12:30"},
		     {"id":"c","characterId":"2","text":"no date","author":"Summer","createdAt":"someday"}]}`

	s, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, "keep me", s["1"][0].Text)
	assert.False(t, s["2"][0].CreatedAt.IsZero())
	assert.True(t, s["2"][1].CreatedAt.IsZero())

	problems := c.Inspect(s)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "comment c of character 2")
}
