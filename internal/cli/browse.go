package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/explorer"
	"github.com/ceyewan/portalgun/internal/bootstrap"
	"github.com/ceyewan/portalgun/model"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Page          int
	Name          string
	Status        string
	Species       string
	Gender        string
	SortBy        string
	CharacterType string
	JSON          bool
}

// filters 复用查询参数解析，非法取值回落到默认
func (o *ListOptions) filters() explorer.Filters {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	if o.Page > 0 {
		v.Set(explorer.ParamPage, strconv.Itoa(o.Page))
	}
	set(explorer.ParamName, o.Name)
	set(explorer.ParamStatus, o.Status)
	set(explorer.ParamSpecies, o.Species)
	set(explorer.ParamGender, o.Gender)
	set(explorer.ParamSortBy, o.SortBy)
	set(explorer.ParamCharacterType, o.CharacterType)
	return explorer.ParseFilters(v)
}

// NewListCommand creates the list command.
func NewListCommand(global *GlobalOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters, starred first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				return runList(ctx, cmd, app, opts)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "Page number")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Filter by name")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (Alive, Dead, unknown)")
	cmd.Flags().StringVar(&opts.Species, "species", "", "Filter by species")
	cmd.Flags().StringVar(&opts.Gender, "gender", "", "Filter by gender")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "", "Sort by name: name-asc or name-desc")
	cmd.Flags().StringVar(&opts.CharacterType, "type", "", "Show all, starred or others")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, opts *ListOptions) error {
	f := opts.filters()
	res, err := app.Explorer.List(ctx, f)
	if err != nil {
		return err
	}
	if opts.JSON {
		return outputJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Page %d/%d, %d characters in total\n", f.Page, res.Info.Pages, res.Info.Count)
	if f.CharacterType != explorer.TypeOthers {
		printCharacters(out, "Starred", res.Starred)
	}
	if f.CharacterType != explorer.TypeStarred {
		printCharacters(out, "Characters", res.Regular)
	}
	return nil
}

// ShowOptions holds options for the show command.
type ShowOptions struct {
	JSON bool
}

// NewShowCommand creates the show command.
func NewShowCommand(global *GlobalOptions) *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show CHARACTER_ID",
		Short: "Show character details and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewCharacterID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, global, func(ctx context.Context, app *bootstrap.App) error {
				return runShow(ctx, cmd, app, id, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

func runShow(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, id model.CharacterID, opts *ShowOptions) error {
	d, err := app.Explorer.Character(ctx, id)
	if err != nil {
		return err
	}
	comments := app.Comments.List(id)
	if opts.JSON {
		return outputJSON(cmd, struct {
			*explorer.Detail
			Comments []model.Comment `json:"comments"`
		}{d, comments})
	}

	out := cmd.OutOrStdout()
	star := ""
	if d.Favorite {
		star = " *"
	}
	fmt.Fprintf(out, "#%s %s%s\n", d.ID, d.Name, star)
	if d.Deleted {
		fmt.Fprintln(out, "(deleted)")
	}
	fmt.Fprintf(out, "Status:   %s\n", d.Status)
	fmt.Fprintf(out, "Species:  %s\n", d.Species)
	if d.Type != "" {
		fmt.Fprintf(out, "Type:     %s\n", d.Type)
	}
	fmt.Fprintf(out, "Gender:   %s\n", d.Gender)
	fmt.Fprintf(out, "Origin:   %s\n", d.Origin.Name)
	fmt.Fprintf(out, "Location: %s\n", d.Location.Name)
	fmt.Fprintf(out, "Episodes: %d\n", len(d.Episode))
	for _, ep := range d.Episode {
		fmt.Fprintf(out, "  %s %s\n", ep.Episode, ep.Name)
	}
	fmt.Fprintf(out, "\nComments (%d)\n", len(comments))
	printComments(out, comments)
	return nil
}
