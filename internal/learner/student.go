// Package learner holds the Student aggregate persisted by the store and
// mutated only by the progress tracker.
package learner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/adaptutor/internal/diagnostic"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// MaxTransitions bounds the transition log kept on the aggregate. The
// SQLite store keeps the full log in its own table.
const MaxTransitions = 200

// TransitionKind says what a transition changed.
type TransitionKind string

const (
	TransitionModule TransitionKind = "module"
	TransitionLevel  TransitionKind = "level"
)

// Transition is one recorded state or level change.
type Transition struct {
	Kind    TransitionKind `json:"kind"`
	Subject string         `json:"subject"` // module id, or student id for level changes
	From    string         `json:"from"`
	To      string         `json:"to"`
	Trigger string         `json:"trigger"`
	At      time.Time      `json:"at"`
}

// DiagnosticRecord is an immutable diagnostic attempt with its result.
type DiagnosticRecord struct {
	ID        string                `json:"id"`
	At        time.Time             `json:"at"`
	Responses []diagnostic.Response `json:"responses"`
	Score     float64               `json:"score"`
	Level     proficiency.Level     `json:"level"`
}

// QuizRecord is an immutable quiz attempt with its grading result.
type QuizRecord struct {
	ID           string        `json:"id"`
	At           time.Time     `json:"at"`
	Answers      []quiz.Answer `json:"answers"`
	Score        float64       `json:"score"`
	Outcome      quiz.Outcome  `json:"outcome"`
	MissedTopics []string      `json:"missed_topics,omitempty"`

	// CriticalMissed lists critical questions answered wrong or skipped.
	CriticalMissed []string `json:"critical_missed,omitempty"`
}

// ModuleProgress is the per-module slice of the aggregate.
type ModuleProgress struct {
	ModuleID          string         `json:"module_id"`
	State             mastery.State  `json:"state"`
	Mastery           mastery.Record `json:"mastery"`
	Quizzes           []QuizRecord   `json:"quizzes,omitempty"`
	LastRequestedAt   *time.Time     `json:"last_requested_at,omitempty"`
	RetakeAvailableAt *time.Time     `json:"retake_available_at,omitempty"`
}

// Quiz returns the recorded attempt with the given id.
func (p *ModuleProgress) Quiz(id string) (QuizRecord, bool) {
	if id == "" {
		return QuizRecord{}, false
	}
	for _, q := range p.Quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return QuizRecord{}, false
}

// Student is the persisted learner aggregate.
type Student struct {
	ID          string                     `json:"id"`
	Level       proficiency.Level          `json:"level"`
	Diagnosed   bool                       `json:"diagnosed"`
	Version     int64                      `json:"version"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	Modules     map[string]*ModuleProgress `json:"modules"`
	Diagnostics []DiagnosticRecord         `json:"diagnostics,omitempty"`
	Transitions []Transition               `json:"transitions,omitempty"`

	// pending holds transitions recorded since load, for stores that keep
	// a separate transition log.
	pending []Transition
}

// New returns an empty, undiagnosed student.
func New(id string, now time.Time) *Student {
	return &Student{
		ID:        id,
		Level:     proficiency.Beginner,
		CreatedAt: now,
		UpdatedAt: now,
		Modules:   make(map[string]*ModuleProgress),
	}
}

// Module returns the progress for moduleID, creating a not_started entry
// when absent.
func (s *Student) Module(moduleID string) *ModuleProgress {
	if s.Modules == nil {
		s.Modules = make(map[string]*ModuleProgress)
	}
	p, ok := s.Modules[moduleID]
	if !ok {
		p = &ModuleProgress{
			ModuleID: moduleID,
			State:    mastery.StateNotStarted,
			Mastery:  mastery.Record{ModuleID: moduleID},
		}
		s.Modules[moduleID] = p
	}
	return p
}

// Record appends a transition, trimming the log to MaxTransitions.
func (s *Student) Record(t Transition) {
	s.Transitions = append(s.Transitions, t)
	if n := len(s.Transitions); n > MaxTransitions {
		s.Transitions = append([]Transition(nil), s.Transitions[n-MaxTransitions:]...)
	}
	s.pending = append(s.pending, t)
}

// Pending returns the transitions recorded since load without clearing
// them.
func (s *Student) Pending() []Transition {
	return s.pending
}

// TakePending returns and clears the transitions recorded since load.
func (s *Student) TakePending() []Transition {
	p := s.pending
	s.pending = nil
	return p
}

// AggregateMastery returns the mean mastery score over modules with at
// least one attempt, and how many such modules there are.
func (s *Student) AggregateMastery() (float64, int) {
	var sum float64
	var n int
	for _, p := range s.Modules {
		if p.Mastery.Attempts == 0 {
			continue
		}
		sum += p.Mastery.Score
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// Clone returns a deep copy. Pending transitions are not carried over.
func (s *Student) Clone() (*Student, error) {
	b, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Encode serialises the student for storage.
func (s *Student) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode student %s: %w", s.ID, err)
	}
	return b, nil
}

// Decode restores a student written by Encode.
func Decode(b []byte) (*Student, error) {
	var s Student
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode student: %w", err)
	}
	if s.Modules == nil {
		s.Modules = make(map[string]*ModuleProgress)
	}
	return &s, nil
}
