package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/ui/theme"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a student's level and module progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.tracker.Status(cmd.Context(), studentID)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), st)
		}

		floor := a.tracker.Config().Mastery.Floor
		var b strings.Builder
		b.WriteString(theme.Title.Render("Student "+st.StudentID) + "\n")
		if !st.Diagnosed {
			b.WriteString(theme.Hint.Render("not diagnosed yet") + "\n")
		}
		b.WriteString(theme.Row("Level", theme.Level(st.Level)) + "\n")
		b.WriteString(theme.Row("Pace", string(st.Pace)) + "\n")
		b.WriteString(theme.Row("Overall mastery", masteryBar(st.AggregateMastery, floor, "")) + "\n")
		b.WriteString(theme.Row("Diagnostics", fmt.Sprint(st.Diagnostics)) + "\n")

		for _, m := range st.Modules {
			title := m.Title
			if title == "" {
				title = m.ModuleID
			}
			b.WriteString("\n" + theme.Body.Bold(true).Render(title) + "\n")
			b.WriteString(theme.Row("  State", theme.State(m.State)) + "\n")
			b.WriteString(theme.Row("  Mastery", masteryBar(m.Mastery, floor, m.State)) + "\n")
			if m.Attempts > 0 {
				b.WriteString(theme.Row("  Attempts", fmt.Sprintf("%d (last %s)", m.Attempts, m.LastOutcome)) + "\n")
				b.WriteString(theme.Row("  Pace", theme.Pace(m.PaceHint)) + "\n")
			}
			if m.RetakeAvailableAt != nil {
				b.WriteString(theme.Row("  Retake after", m.RetakeAvailableAt.Local().Format("2006-01-02 15:04")) + "\n")
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), theme.Card.Render(strings.TrimRight(b.String(), "\n"))+"\n")
		return nil
	},
}

func init() {
	statusCmd.Flags().String("student", "", "Student id")
	_ = statusCmd.MarkFlagRequired("student")
}
