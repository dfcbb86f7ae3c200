package avatar

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/reqqueue"
	"github.com/ceyewan/portalgun/xerrors"
)

func newLoader(t *testing.T, max int, opts ...Option) *Loader {
	t.Helper()
	q, err := reqqueue.New[*Blob](&reqqueue.Config{MaxConcurrent: max}, reqqueue.WithName("avatar"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close(context.Background()) })
	l, err := New(q, opts...)
	require.NoError(t, err)
	return l
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNew_NilQueue(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilQueue)
}

func TestLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(srv.Close)

	blob, err := newLoader(t, 3).Load(waitCtx(t), srv.URL+"/1.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", blob.ContentType)
	assert.Equal(t, []byte("jpeg-bytes"), blob.Data)
	assert.Equal(t, srv.URL+"/1.jpeg", blob.URL)
}

// 同一 URL 加载两次，只发一次 HTTP 请求，两个调用方拿到同一份数据
func TestLoad_SameURLOneRequest(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-gate
		_, _ = w.Write([]byte("avatar"))
	}))
	t.Cleanup(srv.Close)

	l := newLoader(t, 3)
	url := srv.URL + "/rick.jpeg"

	f1 := l.LoadAsync(url)
	f2 := l.LoadAsync(url)
	assert.Same(t, f1, f2)

	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, time.Millisecond)
	close(gate)

	b1, err := f1.Wait(waitCtx(t))
	require.NoError(t, err)
	b2, err := f2.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("avatar"), b1.Data)
	assert.Same(t, b1, b2)
	assert.Equal(t, int32(1), hits.Load())

	// 结束后再次加载会重新请求
	_, err = l.Load(waitCtx(t), url)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestLoad_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newLoader(t, 1).Load(waitCtx(t), srv.URL+"/missing.jpeg")
	assert.ErrorIs(t, err, ErrBadStatus)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestLoad_EmptyURL(t *testing.T) {
	_, err := newLoader(t, 1).Load(waitCtx(t), "")
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestLoadOrPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.png" {
			_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	l := newLoader(t, 2)

	blob, ok := l.LoadOrPlaceholder(waitCtx(t), srv.URL+"/broken.png")
	assert.False(t, ok)
	assert.Equal(t, PlaceholderContentType, blob.ContentType)
	assert.Contains(t, string(blob.Data), "<svg")

	blob, ok = l.LoadOrPlaceholder(waitCtx(t), srv.URL+"/ok.png")
	assert.True(t, ok)
	assert.Equal(t, "image/png", blob.ContentType, "缺少 Content-Type 时按内容嗅探")
}

func TestLoad_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(bytes.Repeat([]byte{0xff}, 100))
	}))
	t.Cleanup(srv.Close)
	l := newLoader(t, 1, WithMaxSize(64))

	_, err := l.Load(waitCtx(t), srv.URL+"/big.jpeg")
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, err, xerrors.ErrUnavailable)

	blob, ok := l.LoadOrPlaceholder(waitCtx(t), srv.URL+"/big.jpeg")
	assert.False(t, ok, "超限图片不截断，改用占位图")
	assert.Equal(t, PlaceholderContentType, blob.ContentType)
}

func TestLoad_ExactlyMaxSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte{0xff}, 64))
	}))
	t.Cleanup(srv.Close)

	blob, err := newLoader(t, 1, WithMaxSize(64)).Load(waitCtx(t), srv.URL+"/edge.jpeg")
	require.NoError(t, err)
	assert.Len(t, blob.Data, 64)
}
