package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/quiz"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Submit a quiz attempt for grading",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		file, _ := cmd.Flags().GetString("file")

		var attempt quiz.Attempt
		if err := readJSONFile(file, &attempt); err != nil {
			return err
		}
		if m, _ := cmd.Flags().GetString("module"); m != "" {
			attempt.ModuleID = m
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dec, err := a.tracker.SubmitQuiz(cmd.Context(), studentID, attempt)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), dec)
		}

		var b strings.Builder
		b.WriteString(theme.Title.Render("Quiz: "+dec.ModuleID) + "\n")
		if dec.Replayed {
			b.WriteString(theme.Hint.Render("already recorded, showing stored result") + "\n")
		}
		b.WriteString(theme.Row("Outcome", theme.Outcome(dec.Outcome)) + "\n")
		b.WriteString(theme.Row("Score", fmt.Sprintf("%.2f", dec.Score)) + "\n")
		b.WriteString(theme.Row("Mastery", masteryBar(dec.Record.Score, a.tracker.Config().Mastery.Floor, dec.State)) + "\n")
		b.WriteString(theme.Row("Attempts", fmt.Sprint(dec.Record.Attempts)) + "\n")
		b.WriteString(theme.Row("State", theme.State(dec.State)) + "\n")
		b.WriteString(theme.Row("Pace", theme.Pace(dec.PaceHint)) + "\n")
		if len(dec.MissedTopics) > 0 {
			b.WriteString(theme.Row("Missed topics", strings.Join(dec.MissedTopics, ", ")) + "\n")
		}
		if len(dec.CriticalMissed) > 0 {
			b.WriteString(theme.Row("Critical missed", theme.Bad.Render(strings.Join(dec.CriticalMissed, ", "))) + "\n")
		}
		if dec.RetakeAvailableAt != nil {
			b.WriteString(theme.Row("Retake after", dec.RetakeAvailableAt.Local().Format(time.Kitchen)) + "\n")
		}
		if dec.Escalate {
			b.WriteString(theme.Warn.Render("Repeated remediation: consider a different approach or extra help.") + "\n")
		}
		if dec.LevelChange != nil {
			b.WriteString(theme.Row("Level", theme.Level(dec.LevelChange.From)+" → "+theme.Level(dec.LevelChange.To)) + "\n")
		}
		renderTransitions(&b, dec.Transitions)
		fmt.Fprint(cmd.OutOrStdout(), theme.Card.Render(strings.TrimRight(b.String(), "\n"))+"\n")
		return nil
	},
}

func init() {
	quizCmd.Flags().String("student", "", "Student id")
	quizCmd.Flags().String("module", "", "Module id (overrides module_id in the file)")
	quizCmd.Flags().String("file", "-", "Attempt JSON file, or - for stdin")
	_ = quizCmd.MarkFlagRequired("student")
}
