package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceyewan/portalgun/model"
)

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCharacters(w io.Writer, title string, list []model.CharacterBasic) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(list))
	for _, ch := range list {
		fmt.Fprintf(w, "  %-5s %-32s %-8s %s\n", ch.ID, ch.Name, ch.Status, ch.Species)
	}
}

func printComments(w io.Writer, list []model.Comment) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No comments")
		return
	}
	for _, c := range list {
		fmt.Fprintf(w, "%s  %s  %s\n    %s\n", c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Text)
	}
}

func parseIDs(args []string) ([]model.CharacterID, error) {
	ids, err := model.CharacterIDs(args...)
	if err != nil {
		return nil, fmt.Errorf("invalid character id: %w", err)
	}
	return ids, nil
}

func joinIDs(ids []model.CharacterID) string {
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = id.String()
	}
	return strings.Join(ss, ", ")
}
