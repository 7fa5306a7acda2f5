package proficiency

import (
	"fmt"
	"strings"
)

// Level is a learner's ordered proficiency classification.
type Level int

const (
	Beginner Level = iota
	Intermediate
	Advanced
)

// AllLevels returns every level in ascending order.
func AllLevels() []Level {
	return []Level{Beginner, Intermediate, Advanced}
}

func (l Level) String() string {
	switch l {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// DisplayName returns the capitalised name used in learner-facing output.
func (l Level) DisplayName() string {
	switch l {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	default:
		return l.String()
	}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Beginner && l <= Advanced
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return Beginner, nil
	case "intermediate":
		return Intermediate, nil
	case "advanced":
		return Advanced, nil
	}
	return 0, fmt.Errorf("unknown proficiency level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid proficiency level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Ordinal returns the position of l in the ordering, starting at 0.
func Ordinal(l Level) int {
	return int(l)
}

// Compare returns -1, 0 or 1 as a is below, equal to or above b.
func Compare(a, b Level) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Lower returns the level one step down, or false at Beginner.
func (l Level) Lower() (Level, bool) {
	if l <= Beginner {
		return Beginner, false
	}
	return l - 1, true
}

// StepToward moves at most one level from l in the direction of target.
func StepToward(l, target Level) Level {
	switch Compare(l, target) {
	case -1:
		return l + 1
	case 1:
		return l - 1
	default:
		return l
	}
}

// Pace is the learning pace associated with a level.
type Pace string

const (
	PaceSlow     Pace = "slow"
	PaceModerate Pace = "moderate"
	PaceFast     Pace = "fast"
)

// PaceFor maps a level to its default learning pace.
func PaceFor(l Level) Pace {
	switch l {
	case Advanced:
		return PaceFast
	case Intermediate:
		return PaceModerate
	default:
		return PaceSlow
	}
}
