package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/learner"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/ui/components"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSONFile decodes path, or stdin when path is "-".
func readJSONFile(path string, dst any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func masteryBar(score, floor float64, state mastery.State) string {
	return components.NewMasteryBar(score, floor, state, 36).View()
}

func renderTransitions(b *strings.Builder, trs []learner.Transition) {
	if len(trs) == 0 {
		return
	}
	b.WriteString("\n" + theme.Title.Render("Transitions") + "\n")
	for _, t := range trs {
		from := t.From
		if from == "" {
			from = "-"
		}
		fmt.Fprintf(b, "  %s %-12s %s → %s %s\n",
			theme.Hint.Render(t.At.Local().Format("2006-01-02 15:04")),
			t.Subject, from, t.To, theme.Hint.Render("("+t.Trigger+")"))
	}
}
