package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/diagnostic"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Submit a diagnostic attempt and classify the student",
	Example: `  adaptutor diagnose --student alice --file attempt.json
  cat attempt.json | adaptutor diagnose --student alice --file -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		file, _ := cmd.Flags().GetString("file")

		var attempt diagnostic.Attempt
		if err := readJSONFile(file, &attempt); err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dec, err := a.tracker.SubmitDiagnostic(cmd.Context(), studentID, attempt)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), dec)
		}

		var b strings.Builder
		b.WriteString(theme.Title.Render("Diagnostic for "+studentID) + "\n")
		b.WriteString(theme.Row("Score", fmt.Sprintf("%.2f (%d/%d correct)", dec.Score, dec.Correct, dec.Questions)) + "\n")
		b.WriteString(theme.Row("Level", theme.Level(dec.Level)) + "\n")
		b.WriteString(theme.Row("Learning pace", string(dec.Pace)) + "\n")
		if dec.LevelChange != nil {
			b.WriteString(theme.Row("Changed from", theme.Level(dec.LevelChange.From)) + "\n")
		}
		renderTransitions(&b, dec.Transitions)
		fmt.Fprint(cmd.OutOrStdout(), theme.Card.Render(strings.TrimRight(b.String(), "\n"))+"\n")
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().String("student", "", "Student id")
	diagnoseCmd.Flags().String("file", "-", "Attempt JSON file, or - for stdin")
	_ = diagnoseCmd.MarkFlagRequired("student")
}
