// Package bootstrap 根据 AppConfig 组装整个应用。
//
// 组件按依赖顺序创建，关闭时逆序释放；只有所选驱动需要的连接器才会建立。
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/ceyewan/portalgun/avatar"
	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/comments"
	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/explorer"
	"github.com/ceyewan/portalgun/favorites"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/persist"
	"github.com/ceyewan/portalgun/reqqueue"
	"github.com/ceyewan/portalgun/rickmorty"
	"github.com/ceyewan/portalgun/server"
	"github.com/ceyewan/portalgun/softdelete"
	"github.com/ceyewan/portalgun/storage"
	"github.com/ceyewan/portalgun/xerrors"
)

// App 组装好的应用
type App struct {
	Config    *AppConfig
	Logger    clog.Logger
	Meter     metrics.Meter
	Storage   storage.Storage
	Channel   broadcast.Channel
	Hub       *broadcast.Hub // memory 驱动使用的 Hub，其他驱动为 nil
	Favorites *favorites.Service
	Deleted   *softdelete.Service
	Comments  *comments.Service
	Client    *rickmorty.Client
	Queue     *reqqueue.Queue[*avatar.Blob]
	Avatars   *avatar.Loader
	Explorer  *explorer.Explorer

	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// Option 组装选项
type Option func(*options)

type options struct {
	logger     clog.Logger
	hub        *broadcast.Hub
	httpClient *http.Client
}

// WithLogger 使用外部 logger，忽略 AppConfig.Log
func WithLogger(logger clog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHub 让多个 App 共享同一个内存广播 hub
func WithHub(hub *broadcast.Hub) Option {
	return func(o *options) { o.hub = hub }
}

// WithHTTPClient 上游 API 与头像共用的 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New 组装应用。失败时已创建的组件会被释放。
func New(ctx context.Context, cfg *AppConfig, opts ...Option) (app *App, err error) {
	if cfg == nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "bootstrap: config is nil")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	app = &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	if err = app.initObservability(o); err != nil {
		return app, err
	}
	if err = app.initState(ctx, o); err != nil {
		return app, err
	}
	if err = app.initRemote(o); err != nil {
		return app, err
	}

	app.Logger.Info("application ready",
		clog.String("storage", cfg.Storage.Driver),
		clog.String("broadcast", cfg.Broadcast.Driver),
		clog.String("origin", app.Channel.Origin()))
	return app, nil
}

func (a *App) push(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) initObservability(o *options) error {
	a.Logger = o.logger
	if a.Logger == nil {
		logger, err := clog.New(&a.Config.Log, clog.WithStandardContext())
		if err != nil {
			return xerrors.Wrap(err, "bootstrap: create logger")
		}
		a.Logger = logger
		a.push("logger", func() error { logger.Flush(); return nil })
	}

	meter, err := metrics.New(&a.Config.Metrics, metrics.WithLogger(a.Logger))
	if err != nil {
		return xerrors.Wrap(err, "bootstrap: create meter")
	}
	a.Meter = meter
	a.push("metrics", func() error { return meter.Shutdown(context.Background()) })
	return nil
}

// initState 建立连接器、存储、广播与三个本地状态
func (a *App) initState(ctx context.Context, o *options) error {
	cfg := a.Config
	connOpts := []connector.Option{connector.WithLogger(a.Logger), connector.WithMeter(a.Meter)}

	var redisConn connector.RedisConnector
	if cfg.Storage.Driver == storage.DriverRedis || cfg.Broadcast.Driver == broadcast.DriverRedis {
		conn, err := connector.NewRedis(&cfg.Redis, connOpts...)
		if err != nil {
			return err
		}
		a.push("redis", conn.Close)
		if err := conn.Connect(ctx); err != nil {
			return err
		}
		redisConn = conn
	}

	storageOpts := []storage.Option{storage.WithLogger(a.Logger), storage.WithMeter(a.Meter)}
	if redisConn != nil {
		storageOpts = append(storageOpts, storage.WithRedis(redisConn))
	}
	if cfg.Storage.Driver == storage.DriverSQLite {
		conn, err := connector.NewSQLite(&cfg.SQLite, connOpts...)
		if err != nil {
			return err
		}
		a.push("sqlite", conn.Close)
		if err := conn.Connect(ctx); err != nil {
			return err
		}
		storageOpts = append(storageOpts, storage.WithSQLite(conn))
	}
	st, err := storage.New(&cfg.Storage, storageOpts...)
	if err != nil {
		return err
	}
	a.Storage = st
	a.push("storage", st.Close)

	chOpts := []broadcast.Option{broadcast.WithLogger(a.Logger), broadcast.WithMeter(a.Meter)}
	if cfg.Broadcast.Driver == broadcast.DriverMemory {
		a.Hub = o.hub
		if a.Hub == nil {
			a.Hub = broadcast.NewHub()
		}
		chOpts = append(chOpts, broadcast.WithHub(a.Hub))
	}
	if redisConn != nil {
		chOpts = append(chOpts, broadcast.WithRedis(redisConn))
	}
	if cfg.Broadcast.Driver == broadcast.DriverNATS {
		conn, err := connector.NewNATS(&cfg.NATS, connOpts...)
		if err != nil {
			return err
		}
		a.push("nats", conn.Close)
		if err := conn.Connect(ctx); err != nil {
			return err
		}
		chOpts = append(chOpts, broadcast.WithNATS(conn))
	}
	ch, err := broadcast.New(&cfg.Broadcast, chOpts...)
	if err != nil {
		return err
	}
	a.Channel = ch
	a.push("broadcast", ch.Close)

	persistOpts := []persist.Option{
		persist.WithLogger(a.Logger),
		persist.WithMeter(a.Meter),
		persist.WithPersistErrorHandler(func(key string, err error) {
			a.Logger.Error("state not persisted", clog.String("key", key), clog.Error(err))
		}),
	}
	persistOpts = append(persistOpts, a.syncOptions()...)
	if a.Favorites, err = favorites.New(ctx, st, ch, persistOpts...); err != nil {
		return err
	}
	a.push("favorites", a.Favorites.Close)
	if a.Deleted, err = softdelete.New(ctx, st, ch, persistOpts...); err != nil {
		return err
	}
	a.push("softdelete", a.Deleted.Close)
	if a.Comments, err = comments.New(ctx, st, ch, persistOpts...); err != nil {
		return err
	}
	a.push("comments", a.Comments.Close)
	return nil
}

// syncOptions 存储可被其他进程写入时，变更前先读取存储；
// 若广播也到不了其他进程，再定期轮询存储
func (a *App) syncOptions() []persist.Option {
	cfg := a.Config
	if cfg.Storage.Driver == storage.DriverMemory {
		return nil
	}
	opts := []persist.Option{persist.WithReadThrough()}
	if cfg.Broadcast.Driver == broadcast.DriverMemory {
		a.Logger.Warn("broadcast driver does not reach other processes, polling storage instead",
			clog.String("storage", cfg.Storage.Driver),
			clog.Duration("poll_interval", cfg.Sync.PollInterval))
		opts = append(opts, persist.WithPollInterval(cfg.Sync.PollInterval))
	}
	return opts
}

// initRemote 上游客户端、头像队列与视图
func (a *App) initRemote(o *options) error {
	var err error
	rmOpts := []rickmorty.Option{rickmorty.WithLogger(a.Logger), rickmorty.WithMeter(a.Meter)}
	avOpts := []avatar.Option{avatar.WithLogger(a.Logger), avatar.WithMeter(a.Meter)}
	if o.httpClient != nil {
		rmOpts = append(rmOpts, rickmorty.WithHTTPClient(o.httpClient))
		avOpts = append(avOpts, avatar.WithHTTPClient(o.httpClient))
	}
	if a.Client, err = rickmorty.New(&a.Config.RickMorty, rmOpts...); err != nil {
		return err
	}

	q, err := reqqueue.New[*avatar.Blob](&a.Config.Queue,
		reqqueue.WithName("avatar"), reqqueue.WithLogger(a.Logger), reqqueue.WithMeter(a.Meter))
	if err != nil {
		return err
	}
	a.Queue = q
	a.push("queue", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		return q.Close(ctx)
	})
	if a.Avatars, err = avatar.New(q, avOpts...); err != nil {
		return err
	}

	a.Explorer, err = explorer.New(a.Client, a.Favorites, a.Deleted, explorer.WithLogger(a.Logger))
	return err
}

func (a *App) shutdownTimeout() time.Duration {
	if a.Config.Server.ShutdownTimeout > 0 {
		return a.Config.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

// Server 创建 HTTP 服务
func (a *App) Server(opts ...server.Option) (*server.Server, error) {
	all := append([]server.Option{server.WithLogger(a.Logger), server.WithMeter(a.Meter)}, opts...)
	return server.New(&a.Config.Server, server.Deps{
		Explorer:  a.Explorer,
		Favorites: a.Favorites,
		Deleted:   a.Deleted,
		Comments:  a.Comments,
		Avatars:   a.Avatars,
		Storage:   a.Storage,
	}, all...)
}

// Close 逆序释放所有组件，返回遇到的全部错误
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			if a.Logger != nil {
				a.Logger.Warn("close component failed", clog.String("component", c.name), clog.Error(err))
			}
			errs = append(errs, xerrors.Wrap(err, c.name))
		}
	}
	a.closers = nil
	return xerrors.Combine(errs...)
}
