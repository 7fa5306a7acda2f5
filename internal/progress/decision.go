package progress

import (
	"time"

	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/learner"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// LevelChange is set on a decision when the student's level moved.
type LevelChange struct {
	From proficiency.Level `json:"from"`
	To   proficiency.Level `json:"to"`
}

// DiagnosticDecision is returned by SubmitDiagnostic.
type DiagnosticDecision struct {
	StudentID   string               `json:"student_id"`
	AttemptID   string               `json:"attempt_id"`
	Score       float64              `json:"score"`
	Level       proficiency.Level    `json:"level"`
	Pace        proficiency.Pace     `json:"pace"`
	Correct     int                  `json:"correct"`
	Questions   int                  `json:"questions"`
	LevelChange *LevelChange         `json:"level_change,omitempty"`
	Transitions []learner.Transition `json:"transitions,omitempty"`
}

// ModuleDecision is returned by RequestModule: what to show and how fast.
type ModuleDecision struct {
	StudentID   string               `json:"student_id"`
	ModuleID    string               `json:"module_id"`
	Title       string               `json:"title"`
	Level       proficiency.Level    `json:"level"`
	Selection   content.Selection    `json:"selection"`
	PaceHint    content.PaceHint     `json:"pace_hint"`
	State       mastery.State        `json:"state"`
	Focus       []content.Section    `json:"focus,omitempty"`
	Transitions []learner.Transition `json:"transitions,omitempty"`
}

// QuizDecision is returned by SubmitQuiz.
type QuizDecision struct {
	StudentID      string            `json:"student_id"`
	ModuleID       string            `json:"module_id"`
	AttemptID      string            `json:"attempt_id"`
	Score          float64           `json:"score"`
	Outcome        quiz.Outcome      `json:"outcome"`
	MissedTopics   []string          `json:"missed_topics"`
	CriticalMissed []string          `json:"critical_missed,omitempty"`
	Record         mastery.Record    `json:"record"`
	State          mastery.State     `json:"state"`
	PaceHint       content.PaceHint  `json:"pace_hint"`
	Focus          []content.Section `json:"focus,omitempty"`
	// Escalate is set once a module has been remediated twice; the
	// conversational layer should hand over to a human or a different
	// strategy.
	Escalate          bool                 `json:"escalate,omitempty"`
	RetakeAvailableAt *time.Time           `json:"retake_available_at,omitempty"`
	Level             proficiency.Level    `json:"level"`
	LevelChange       *LevelChange         `json:"level_change,omitempty"`
	Replayed          bool                 `json:"replayed,omitempty"`
	Transitions       []learner.Transition `json:"transitions,omitempty"`
}

// ModuleStatus summarises one module in a StudentStatus.
type ModuleStatus struct {
	ModuleID          string           `json:"module_id"`
	Title             string           `json:"title,omitempty"`
	State             mastery.State    `json:"state"`
	Mastery           float64          `json:"mastery"`
	Attempts          int              `json:"attempts"`
	LastOutcome       quiz.Outcome     `json:"last_outcome,omitempty"`
	PaceHint          content.PaceHint `json:"pace_hint"`
	RetakeAvailableAt *time.Time       `json:"retake_available_at,omitempty"`
}

// StudentStatus is the read-only view returned by Status.
type StudentStatus struct {
	StudentID        string               `json:"student_id"`
	Level            proficiency.Level    `json:"level"`
	Pace             proficiency.Pace     `json:"pace"`
	Diagnosed        bool                 `json:"diagnosed"`
	Version          int64                `json:"version"`
	AggregateMastery float64              `json:"aggregate_mastery"`
	Modules          []ModuleStatus       `json:"modules"`
	Diagnostics      int                  `json:"diagnostics"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Transitions      []learner.Transition `json:"recent_transitions,omitempty"`
}
