// Package cli 实现 portalgun 命令行。
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/config"
	"github.com/ceyewan/portalgun/internal/bootstrap"
)

// GlobalOptions 所有子命令共享的参数
type GlobalOptions struct {
	ConfigFile string
	Env        string
	LogLevel   string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "portalgun",
		Short:         "portalgun - Rick and Morty character explorer",
		Long:          "portalgun browses Rick and Morty characters with local favorites, soft deletes and comments.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Env != "" {
				return os.Setenv(config.DefaultEnvPrefix+"_ENV", opts.Env)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Config file (default: ./config.yaml or ./config/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", "", "Environment overlay, merges config.<env>.yaml")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override log.level")

	cmd.AddCommand(
		NewServeCommand(opts),
		NewListCommand(opts),
		NewShowCommand(opts),
		NewFavoritesCommand(opts),
		NewDeletedCommand(opts),
		NewCommentsCommand(opts),
		NewAvatarCommand(opts),
	)

	return cmd
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(version).ExecuteContext(ctx)
}

// loadConfig 读取配置并应用命令行覆盖项
func loadConfig(ctx context.Context, opts *GlobalOptions) (*bootstrap.AppConfig, config.Loader, error) {
	cfg, loader, err := bootstrap.LoadConfig(ctx, opts.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, loader, nil
}

// withApp 组装应用，执行 fn 后释放
func withApp(cmd *cobra.Command, opts *GlobalOptions, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, _, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			app.Logger.Warn("shutdown incomplete", clog.Error(cerr))
		}
	}()
	return fn(ctx, app)
}
