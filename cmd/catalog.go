package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the module catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog modules and their level variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := resolveCatalog(cmd)
		if err != nil {
			return err
		}

		type row struct {
			ID     string   `json:"id"`
			Title  string   `json:"title"`
			Levels []string `json:"levels"`
			Quiz   int      `json:"quiz_questions"`
		}
		var rows []row
		for _, m := range cat.Modules() {
			r := row{ID: m.ID, Title: m.Title, Quiz: len(m.Quiz.Questions)}
			for _, l := range proficiency.AllLevels() {
				if m.HasVariant(l) {
					r.Levels = append(r.Levels, l.String())
				}
			}
			if m.Default != nil {
				r.Levels = append(r.Levels, "default")
			}
			rows = append(rows, r)
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), map[string]any{"format": cat.Format(), "modules": rows})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("Catalog "+cat.Format()))
		for _, r := range rows {
			fmt.Fprintf(out, "  %-16s %s %s\n", r.ID, r.Title,
				theme.Hint.Render(fmt.Sprintf("[%s] %d questions", strings.Join(r.Levels, ", "), r.Quiz)))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
}
