// Package avatar 通过有界并发队列加载角色头像。
//
// 同一 URL 的并发请求合并为一次 HTTP 请求；请求结束后不缓存，
// 之后再次加载会重新发起请求。
package avatar

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/reqqueue"
	"github.com/ceyewan/portalgun/xerrors"
)

// Blob 图片内容
type Blob struct {
	URL         string
	ContentType string
	Data        []byte
}

// Loader 头像加载器
type Loader struct {
	queue   *reqqueue.Queue[*Blob]
	http    *http.Client
	maxSize int64
	logger  clog.Logger
	loads   metrics.Counter
}

// New 创建加载器，队列由调用方创建和关闭
func New(queue *reqqueue.Queue[*Blob], opts ...Option) (*Loader, error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	o := applyOptions(opts)
	loads, err := o.meter.Counter("avatar_loads_total", "Avatar loads by outcome.")
	if err != nil {
		return nil, xerrors.Wrap(err, "avatar: create metrics")
	}
	return &Loader{
		queue:   queue,
		http:    o.httpClient,
		maxSize: o.maxSize,
		logger:  o.logger,
		loads:   loads,
	}, nil
}

// Load 加载图片，以 URL 作为去重键。ctx 只控制等待，取消后请求仍会在队列中完成。
func (l *Loader) Load(ctx context.Context, url string) (*Blob, error) {
	blob, err := l.LoadAsync(url).Wait(ctx)
	l.loads.Inc(ctx, metrics.L(metrics.LabelOutcome, metrics.Outcome(err)))
	return blob, err
}

// LoadAsync 提交加载任务并立即返回。同一 URL 在途时返回同一个 Future。
func (l *Loader) LoadAsync(url string) *reqqueue.Future[*Blob] {
	if url == "" {
		return l.queue.Add(func(context.Context) (*Blob, error) { return nil, ErrEmptyURL }, "")
	}
	return l.queue.Add(func(taskCtx context.Context) (*Blob, error) {
		return l.fetch(taskCtx, url)
	}, url)
}

// LoadOrPlaceholder 加载失败时返回占位图，第二个返回值表示是否为原图
func (l *Loader) LoadOrPlaceholder(ctx context.Context, url string) (*Blob, bool) {
	blob, err := l.Load(ctx, url)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to load image", clog.String("url", url), clog.Error(err))
		return Placeholder(), false
	}
	return blob, true
}

func (l *Loader) fetch(ctx context.Context, url string) (*Blob, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.Wrap(err, "avatar: build request")
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, xerrors.Wrap(err, "avatar: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return nil, xerrors.Wrap(err, "avatar: read body")
	}
	if int64(len(data)) > l.maxSize {
		return nil, xerrors.Wrapf(ErrTooLarge, "%s: more than %d bytes", url, l.maxSize)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	l.logger.DebugContext(ctx, "image loaded",
		clog.String("url", url),
		clog.Int("bytes", len(data)),
		clog.Duration("elapsed", time.Since(start)))
	return &Blob{URL: url, ContentType: ct, Data: data}, nil
}
