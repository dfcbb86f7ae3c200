package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/internal/bootstrap"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(global *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address, overrides server.addr")

	return cmd
}

func runServe(cmd *cobra.Command, global *GlobalOptions, opts *ServeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, loader, err := loadConfig(ctx, global)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
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

	if err := bootstrap.WatchLogLevel(ctx, loader, app.Logger); err != nil {
		app.Logger.Warn("log level hot reload disabled", clog.Error(err))
	}

	srv, err := app.Server()
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
