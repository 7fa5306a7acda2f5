package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Request a module and print the variant for the student's level",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		moduleID, _ := cmd.Flags().GetString("module")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dec, err := a.tracker.RequestModule(cmd.Context(), studentID, moduleID)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), dec)
		}

		sel := dec.Selection
		var b strings.Builder
		b.WriteString(theme.Title.Render(dec.Title) + "\n")
		b.WriteString(theme.Row("Student level", theme.Level(dec.Level)) + "\n")
		served := theme.Level(sel.Served)
		if sel.UsedDefault {
			served = theme.Hint.Render("default variant")
		}
		b.WriteString(theme.Row("Serving", served) + "\n")
		b.WriteString(theme.Row("State", theme.State(dec.State)) + "\n")
		b.WriteString(theme.Row("Pace", theme.Pace(dec.PaceHint)) + "\n")
		if sel.Variant.EstimatedTime != "" {
			b.WriteString(theme.Row("Estimated time", sel.Variant.EstimatedTime) + "\n")
		}
		b.WriteString("\n" + theme.Body.Render(sel.Variant.Body) + "\n")

		if len(sel.Variant.Formats) > 0 {
			b.WriteString("\n")
			for _, f := range content.AllFormats() {
				if desc, ok := sel.Variant.Formats[f]; ok {
					b.WriteString(theme.Row(string(f), desc) + "\n")
				}
			}
		}
		if len(dec.Focus) > 0 {
			b.WriteString("\n" + theme.Warn.Render("Focus on") + "\n")
			for _, s := range dec.Focus {
				fmt.Fprintf(&b, "  • %s: %s\n", s.Title, s.Body)
			}
		}
		renderTransitions(&b, dec.Transitions)
		fmt.Fprint(cmd.OutOrStdout(), theme.Card.Render(strings.TrimRight(b.String(), "\n"))+"\n")
		return nil
	},
}

func init() {
	moduleCmd.Flags().String("student", "", "Student id")
	moduleCmd.Flags().String("module", "", "Module id")
	_ = moduleCmd.MarkFlagRequired("student")
	_ = moduleCmd.MarkFlagRequired("module")
}
