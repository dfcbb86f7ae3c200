package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/internal/bootstrap"
)

// NewDeletedCommand creates the deleted command group.
func NewDeletedCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deleted",
		Short: "Manage soft-deleted characters",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List soft-deleted characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				list := app.Explorer.Deleted(ctx)
				if asJSON {
					return outputJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Deleted (%d)\n", len(list))
				for _, ch := range list {
					fmt.Fprintf(out, "  %-5s %-32s %s\n", ch.ID, ch.Name, ch.Species)
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	mark := &cobra.Command{
		Use:   "mark CHARACTER_ID...",
		Short: "Hide characters from listings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				for _, id := range ids {
					app.Deleted.MarkAsDeleted(ctx, id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", joinIDs(ids))
				return nil
			})
		},
	}

	restore := &cobra.Command{
		Use:   "restore CHARACTER_ID...",
		Short: "Restore soft-deleted characters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				for _, id := range ids {
					app.Explorer.Restore(ctx, id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", joinIDs(ids))
				return nil
			})
		},
	}

	restoreAll := &cobra.Command{
		Use:   "restore-all",
		Short: "Restore every soft-deleted character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				n := app.Explorer.RestoreAll(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "restored %d characters\n", n)
				return nil
			})
		},
	}

	cmd.AddCommand(list, mark, restore, restoreAll)
	return cmd
}
