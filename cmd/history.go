package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a student's level and module transitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		trs, err := a.tracker.History(cmd.Context(), studentID, limit)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), trs)
		}
		if len(trs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No transitions recorded.")
			return nil
		}
		var b strings.Builder
		renderTransitions(&b, trs)
		fmt.Fprint(cmd.OutOrStdout(), strings.TrimLeft(b.String(), "\n"))
		return nil
	},
}

func init() {
	historyCmd.Flags().String("student", "", "Student id")
	historyCmd.Flags().Int("limit", 50, "Maximum transitions to show (0 for all)")
	_ = historyCmd.MarkFlagRequired("student")
}
