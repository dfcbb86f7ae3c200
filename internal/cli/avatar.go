package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/internal/bootstrap"
)

// AvatarOptions holds options for the avatar command.
type AvatarOptions struct {
	Output string
}

// NewAvatarCommand creates the avatar command.
func NewAvatarCommand(global *GlobalOptions) *cobra.Command {
	opts := &AvatarOptions{}

	cmd := &cobra.Command{
		Use:   "avatar URL",
		Short: "Download an avatar through the request queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				blob, err := app.Avatars.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.Output == "" || opts.Output == "-" {
					_, err = cmd.OutOrStdout().Write(blob.Data)
					return err
				}
				if err := os.WriteFile(opts.Output, blob.Data, 0o644); err != nil {
					return fmt.Errorf("write avatar: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%s, %d bytes)\n", opts.Output, blob.ContentType, len(blob.Data))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file, - for stdout")

	return cmd
}
