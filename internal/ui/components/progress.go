package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

const (
	fillCell  = "█"
	emptyCell = "░"
	floorMark = "│"
)

// MasteryBar draws a mastery score against the floor a module must reach to
// count as mastered. The fill colour follows the module state.
type MasteryBar struct {
	Score float64
	Floor float64
	State mastery.State
	Width int
}

func NewMasteryBar(score, floor float64, state mastery.State, width int) MasteryBar {
	return MasteryBar{Score: score, Floor: floor, State: state, Width: width}
}

// cells converts a fraction to a cell count within [0, n].
func cells(frac float64, n int) int {
	c := int(frac * float64(n))
	return max(0, min(c, n))
}

func (b MasteryBar) fill() color.Color {
	switch {
	case b.State == mastery.StateMastered:
		return theme.Success
	case b.State == mastery.StateRemediating:
		return theme.Error
	case b.Floor > 0 && b.Score >= b.Floor:
		return theme.Success
	default:
		return theme.Secondary
	}
}

// View renders the bar followed by "score% / floor%". The floor marker
// replaces the cell at the floor position.
func (b MasteryBar) View() string {
	suffix := fmt.Sprintf(" %3.0f%%", b.Score*100)
	if b.Floor > 0 {
		suffix += fmt.Sprintf(" / %.0f%%", b.Floor*100)
	}
	width := max(b.Width-lipgloss.Width(suffix), 4)

	filled := cells(b.Score, width)
	marker := -1
	if b.Floor > 0 && b.Floor < 1 {
		marker = cells(b.Floor, width)
		if marker == width {
			marker = width - 1
		}
	}

	fill := lipgloss.NewStyle().Foreground(b.fill())
	rest := lipgloss.NewStyle().Foreground(theme.Border)
	mark := lipgloss.NewStyle().Foreground(theme.Accent)

	var sb strings.Builder
	for i := range width {
		switch {
		case i == marker:
			sb.WriteString(mark.Render(floorMark))
		case i < filled:
			sb.WriteString(fill.Render(fillCell))
		default:
			sb.WriteString(rest.Render(emptyCell))
		}
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix))
	return sb.String()
}
