package mastery

import (
	"fmt"

	"github.com/abhisek/adaptutor/internal/quiz"
)

// State represents a module's position in the progression lifecycle.
type State string

const (
	StateNotStarted  State = "not_started"
	StateDiagnosed   State = "diagnosed"
	StateInProgress  State = "in_progress"
	StateRemediating State = "remediating"
	StateMastered    State = "mastered"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateNotStarted, StateDiagnosed, StateInProgress, StateRemediating, StateMastered:
		return true
	}
	return false
}

// Trigger names what caused a transition.
type Trigger string

const (
	TriggerDiagnostic     Trigger = "diagnostic"
	TriggerContentRequest Trigger = "content-request"
	TriggerQuizPass       Trigger = "quiz-pass"
	TriggerQuizRemediate  Trigger = "quiz-remediate"
)

// EventKind is an input to the module state machine.
type EventKind int

const (
	EventDiagnosed EventKind = iota
	EventContentRequested
	EventQuizGraded
)

// Event drives one step of the module state machine.
type Event struct {
	Kind    EventKind
	Outcome quiz.Outcome // EventQuizGraded only
	Mastery float64      // recomputed mastery after the attempt
}

// StateTransition records a module state change for the learner history.
type StateTransition struct {
	ModuleID string
	From     State
	To       State
	Trigger  Trigger
}

// ErrInvalidTransition is returned when an event is not allowed in the
// module's current state.
type ErrInvalidTransition struct {
	From  State
	Event EventKind
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("event %s not allowed in state %s", e.Event, e.From)
}

func (k EventKind) String() string {
	switch k {
	case EventDiagnosed:
		return "diagnosed"
	case EventContentRequested:
		return "content-requested"
	case EventQuizGraded:
		return "quiz-graded"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}
