package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/internal/bootstrap"
	"github.com/ceyewan/portalgun/model"
)

// NewCommentsCommand creates the comments command group.
func NewCommentsCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Manage comments on characters",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list CHARACTER_ID",
		Short: "List comments of a character, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewCharacterID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				list := app.Comments.List(id)
				if asJSON {
					return outputJSON(cmd, list)
				}
				printComments(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	var author string
	add := &cobra.Command{
		Use:   "add CHARACTER_ID TEXT...",
		Short: "Add a comment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewCharacterID(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				c, err := app.Comments.Add(ctx, id, text, author)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added comment %s\n", c.ID)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&author, "author", "a", "", "Comment author")
	_ = add.MarkFlagRequired("author")

	edit := &cobra.Command{
		Use:   "edit CHARACTER_ID COMMENT_ID TEXT...",
		Short: "Replace the text of a comment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewCharacterID(args[0])
			if err != nil {
				return err
			}
			cid, err := model.NewCommentID(args[1])
			if err != nil {
				return err
			}
			text := strings.Join(args[2:], " ")
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				c, err := app.Comments.Update(ctx, id, cid, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated comment %s\n", c.ID)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm CHARACTER_ID COMMENT_ID",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewCharacterID(args[0])
			if err != nil {
				return err
			}
			cid, err := model.NewCommentID(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				app.Comments.Delete(ctx, id, cid)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted comment %s\n", cid)
				return nil
			})
		},
	}

	clear := &cobra.Command{
		Use:   "clear CHARACTER_ID",
		Short: "Delete all comments of a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewCharacterID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				n := app.Comments.Count(id)
				app.Comments.DeleteAllForCharacter(ctx, id)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d comments\n", n)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, edit, rm, clear)
	return cmd
}
