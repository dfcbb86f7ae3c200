package server

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/portalgun/xerrors"
)

// Config 本地 HTTP 服务配置
//
//	server:
//	  addr: 127.0.0.1:8080
//	  mode: release
//	  shutdown_timeout: 10s
//	  avatar_hosts: [rickandmortyapi.com]
type Config struct {
	Addr            string        `mapstructure:"addr"`             // (默认: 127.0.0.1:8080)
	Mode            string        `mapstructure:"mode"`             // gin 模式 debug|release|test (默认: release)
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // (默认: 15s)
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`    // (默认: 60s)
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // (默认: 10s)

	// AvatarHosts /api/avatar 允许代理的图片主机，子域名同样放行 (默认: rickandmortyapi.com)
	AvatarHosts []string `mapstructure:"avatar_hosts"`
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8080"
	}
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if len(c.AvatarHosts) == 0 {
		c.AvatarHosts = []string{"rickandmortyapi.com"}
	}
}

// avatarURLAllowed 只放行 http(s) 且主机在 AvatarHosts 内的地址
func (c *Config) avatarURLAllowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, allowed := range c.AvatarHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed != "" && (host == allowed || strings.HasSuffix(host, "."+allowed)) {
			return true
		}
	}
	return false
}

func (c *Config) validate() error {
	c.setDefaults()
	switch c.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "server: unknown mode %q", c.Mode)
	}
	return nil
}
