// Package server 在本机暴露角色浏览的 HTTP 接口。
//
// 所有状态都在本地存储里，服务本身无状态；同一份存储上的其他进程
// （例如 CLI）所做的修改通过广播通道实时可见。
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/portalgun/avatar"
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/comments"
	"github.com/ceyewan/portalgun/explorer"
	"github.com/ceyewan/portalgun/favorites"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/softdelete"
	"github.com/ceyewan/portalgun/storage"
	"github.com/ceyewan/portalgun/xerrors"
)

// Deps 服务依赖
type Deps struct {
	Explorer  *explorer.Explorer
	Favorites *favorites.Service
	Deleted   *softdelete.Service
	Comments  *comments.Service
	Avatars   *avatar.Loader
	Storage   storage.Storage
}

// Server HTTP 服务
type Server struct {
	cfg    *Config
	deps   Deps
	engine *gin.Engine
	http   *http.Server
	logger clog.Logger
	meter  metrics.Meter
	prompt *installPrompt
}

func New(cfg *Config, deps Deps, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if deps.Favorites == nil || deps.Deleted == nil || deps.Comments == nil || deps.Storage == nil {
		return nil, ErrNilStore
	}
	if deps.Explorer == nil || deps.Avatars == nil {
		return nil, ErrNilDependency
	}
	o := applyOptions(opts)

	httpMetrics, err := metrics.NewHTTPServerMetrics(o.meter, "portalgun")
	if err != nil {
		return nil, xerrors.Wrap(err, "server: create metrics")
	}

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(o.logger), metrics.GinHTTPMiddleware(httpMetrics))

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		engine: engine,
		logger: o.logger,
		meter:  o.meter,
		prompt: &installPrompt{st: deps.Storage, now: o.now},
	}
	s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(s.meter.Handler()))

	api := r.Group("/api")
	api.GET("/characters", s.listCharacters)
	api.GET("/characters/:id", s.getCharacter)

	api.GET("/favorites", s.listFavorites)
	api.POST("/favorites/:id/toggle", s.toggleFavorite)

	api.GET("/deleted", s.listDeleted)
	api.POST("/deleted/:id", s.markDeleted)
	api.DELETE("/deleted/:id", s.restore)
	api.DELETE("/deleted", s.restoreAll)

	api.GET("/characters/:id/comments", s.listComments)
	api.POST("/characters/:id/comments", s.addComment)
	api.PUT("/characters/:id/comments/:commentID", s.updateComment)
	api.DELETE("/characters/:id/comments/:commentID", s.deleteComment)
	api.DELETE("/characters/:id/comments", s.clearComments)

	api.GET("/avatar", s.getAvatar)

	api.GET("/install-prompt", s.installStatus)
	api.POST("/install-prompt", s.dismissInstall)
}

// Handler 返回路由，测试与嵌入时使用
func (s *Server) Handler() http.Handler { return s.engine }

// Run 监听并阻塞，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()
	s.logger.Info("http server listening", clog.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return xerrors.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return xerrors.Wrap(err, "server: shutdown")
	}
	return nil
}
