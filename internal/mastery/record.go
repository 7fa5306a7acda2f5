// Package mastery tracks per-module progression: the module state machine
// and the mastery score derived from quiz history.
package mastery

import (
	"time"

	"github.com/abhisek/adaptutor/internal/quiz"
)

// AttemptScore is one graded quiz attempt as seen by the mastery record.
type AttemptScore struct {
	AttemptID string       `json:"attempt_id"`
	Score     float64      `json:"score"`
	Outcome   quiz.Outcome `json:"outcome"`
	At        time.Time    `json:"at"`
}

// Record is the mastery summary for one module. Score is always derived
// from History and never set directly.
type Record struct {
	ModuleID    string         `json:"module_id"`
	Score       float64        `json:"score"`
	Attempts    int            `json:"attempts"`
	LastOutcome quiz.Outcome   `json:"last_outcome,omitempty"`
	History     []AttemptScore `json:"history,omitempty"`
}

// Apply appends a graded attempt and recomputes the derived fields.
func (r *Record) Apply(a AttemptScore, window int) {
	r.History = append(r.History, a)
	r.Rederive(window)
}

// Rederive recomputes Score, Attempts and LastOutcome from History.
func (r *Record) Rederive(window int) {
	r.Score = Recompute(r.History, window)
	r.Attempts = len(r.History)
	r.LastOutcome = ""
	if n := len(r.History); n > 0 {
		r.LastOutcome = r.History[n-1].Outcome
	}
}

// RecentOutcomes returns up to n outcomes, oldest first.
func (r Record) RecentOutcomes(n int) []quiz.Outcome {
	h := r.History
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	out := make([]quiz.Outcome, len(h))
	for i, a := range h {
		out[i] = a.Outcome
	}
	return out
}

// Recompute returns the recency-weighted mean of the last window attempt
// scores: the oldest attempt in the window has weight 1, the newest has
// weight len(window).
func Recompute(history []AttemptScore, window int) float64 {
	if window <= 0 {
		window = 1
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	if len(history) == 0 {
		return 0
	}
	var sum, weights float64
	for i, a := range history {
		w := float64(i + 1)
		sum += w * clamp(a.Score, 0, 1)
		weights += w
	}
	return clamp(sum/weights, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
