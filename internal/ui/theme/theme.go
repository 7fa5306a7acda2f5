// Package theme holds the lipgloss styles used by the CLI output.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(18)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// Level renders a proficiency level in its display colour.
func Level(l proficiency.Level) string {
	switch l {
	case proficiency.Advanced:
		return Good.Render(l.DisplayName())
	case proficiency.Intermediate:
		return lipgloss.NewStyle().Foreground(Secondary).Bold(true).Render(l.DisplayName())
	default:
		return Warn.Render(l.DisplayName())
	}
}

// State renders a module state.
func State(s mastery.State) string {
	switch s {
	case mastery.StateMastered:
		return Good.Render(string(s))
	case mastery.StateRemediating:
		return Bad.Render(string(s))
	case mastery.StateInProgress:
		return lipgloss.NewStyle().Foreground(Secondary).Render(string(s))
	default:
		return Hint.Render(string(s))
	}
}

// Outcome renders a quiz outcome.
func Outcome(o quiz.Outcome) string {
	if o == quiz.OutcomePass {
		return Good.Render("PASS")
	}
	return Bad.Render("REMEDIATE")
}

// Pace renders a pace hint.
func Pace(p content.PaceHint) string {
	switch p {
	case content.PaceSlowDown:
		return Warn.Render(string(p))
	case content.PaceSpeedUp:
		return Good.Render(string(p))
	default:
		return Body.Render(string(p))
	}
}

// Row renders a "label  value" line.
func Row(label, value string) string {
	return Label.Render(label) + value
}
