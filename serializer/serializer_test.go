package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/xerrors"
)

type envelope struct {
	Key      string  `json:"key"`
	NewValue *string `json:"newValue"`
	Origin   string  `json:"origin"`
}

func TestNew(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"", TypeJSON},
		{"json", TypeJSON},
		{"msgpack", TypeMsgpack},
	}
	for _, tt := range tests {
		s, err := New(tt.typ)
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Name())
	}

	_, err := New("gob")
	assert.ErrorIs(t, err, ErrUnsupportedSerializer)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestMessagePack_UsesJSONTags(t *testing.T) {
	v := `["1","2"]`
	in := envelope{Key: "rickandmorty_favorites", NewValue: &v, Origin: "tab-a"}

	data, err := MessagePackSerializer{}.Marshal(in)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, MessagePackSerializer{}.Unmarshal(data, &asMap))
	assert.Contains(t, asMap, "newValue")

	var out envelope
	require.NoError(t, MessagePackSerializer{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestJSON_NilValue(t *testing.T) {
	data, err := JSONSerializer{}.Marshal(envelope{Key: "k"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"k","newValue":null,"origin":""}`, string(data))
}
