package clog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(t *testing.T, level string, opts ...Option) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts = append(opts, WithOutput(buf))
	l, err := New(&Config{Level: level, Format: "json"}, opts...)
	require.NoError(t, err)
	return l, buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestNew_Config(t *testing.T) {
	t.Run("nil 配置使用默认值", func(t *testing.T) {
		l, err := New(nil, WithOutput(&bytes.Buffer{}))
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("非法级别", func(t *testing.T) {
		_, err := New(&Config{Level: "verbose"})
		assert.Error(t, err)
	})

	t.Run("非法格式", func(t *testing.T) {
		_, err := New(&Config{Format: "xml"})
		assert.Error(t, err)
	})
}

func TestLogger_JSONOutput(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.Info("store loaded", String("key", "rickandmorty_favorites"), Int("count", 2))
	entry := lastEntry(t, buf)

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "store loaded", entry["msg"])
	assert.Equal(t, "rickandmorty_favorites", entry["key"])
	assert.EqualValues(t, 2, entry["count"])
}

func TestLogger_LevelFilter(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Equal(t, "WARN", lastEntry(t, buf)["level"])

	require.NoError(t, l.SetLevel(DebugLevel))
	l.Debug("now visible")
	assert.Equal(t, "DEBUG", lastEntry(t, buf)["level"])

	assert.Error(t, l.SetLevel(Level(99)))
}

func TestLogger_Namespace(t *testing.T) {
	l, buf := newJSONLogger(t, "info", WithNamespace("portalgun"))

	child := l.WithNamespace("persist", "favorites")
	child.Info("mutated")
	assert.Equal(t, "portalgun.persist.favorites", lastEntry(t, buf)[NamespaceKey])

	l.Info("parent")
	assert.Equal(t, "portalgun", lastEntry(t, buf)[NamespaceKey])
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.With(String("component", "reqqueue")).Info("hello")
	assert.Equal(t, "reqqueue", lastEntry(t, buf)["component"])

	l.Info("plain")
	_, ok := lastEntry(t, buf)["component"]
	assert.False(t, ok)
}

func TestLogger_ContextFields(t *testing.T) {
	l, buf := newJSONLogger(t, "info", WithStandardContext())

	ctx := WithRequestID(context.Background(), "req-1")
	l.InfoContext(ctx, "handled")
	assert.Equal(t, "req-1", lastEntry(t, buf)["request_id"])
}

func TestErrorFields(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.Error("failed", Error(errors.New("quota exceeded")))
	assert.Equal(t, "quota exceeded", lastEntry(t, buf)["err_msg"])

	l.Error("failed", ErrorWithCode(errors.New("bad"), "INVALID_INPUT"))
	group, ok := lastEntry(t, buf)["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", group["code"])
	assert.Equal(t, "bad", group["msg"])
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, "error": ErrorLevel, "fatal": FatalLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("nope")
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("ignored")
	assert.NotNil(t, l.With(String("a", "b")).WithNamespace("x"))
	assert.NoError(t, l.SetLevel(DebugLevel))
}
