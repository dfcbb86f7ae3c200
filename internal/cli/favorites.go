package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/internal/bootstrap"
)

// NewFavoritesCommand creates the fav command group.
func NewFavoritesCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "Manage starred characters",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List starred characters that are not deleted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				favs, err := app.Explorer.Favorites(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return outputJSON(cmd, favs)
				}
				printCharacters(cmd.OutOrStdout(), "Starred", favs)
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	toggle := &cobra.Command{
		Use:   "toggle CHARACTER_ID...",
		Short: "Star or unstar characters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					if app.Favorites.Toggle(ctx, id) {
						fmt.Fprintf(out, "starred %s\n", id)
					} else {
						fmt.Fprintf(out, "unstarred %s\n", id)
					}
				}
				return nil
			})
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove all stars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				n := app.Favorites.Count()
				app.Favorites.Clear(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d favorites\n", n)
				return nil
			})
		},
	}

	cmd.AddCommand(list, toggle, clear)
	return cmd
}
