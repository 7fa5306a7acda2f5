package mastery

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/adaptutor/internal/quiz"
)

func scores(vals ...float64) []AttemptScore {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]AttemptScore, len(vals))
	for i, v := range vals {
		outcome := quiz.OutcomeRemediate
		if v >= 0.7 {
			outcome = quiz.OutcomePass
		}
		out[i] = AttemptScore{Score: v, Outcome: outcome, At: base.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func TestRecompute(t *testing.T) {
	tests := []struct {
		name    string
		history []AttemptScore
		window  int
		want    float64
	}{
		{"empty", nil, 5, 0},
		{"single", scores(0.6), 5, 0.6},
		{"recency weighted", scores(0.6, 0.9), 5, (0.6 + 2*0.9) / 3},
		{"window drops oldest", scores(0.0, 0.6, 0.9), 2, (0.6 + 2*0.9) / 3},
		{"window of one", scores(0.2, 0.4, 1.0), 1, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recompute(tt.history, tt.window)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Recompute = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRecord_ApplyDerivesFields(t *testing.T) {
	var r Record
	for _, a := range scores(0.5, 0.9) {
		r.Apply(a, 5)
	}
	if r.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", r.Attempts)
	}
	if r.LastOutcome != quiz.OutcomePass {
		t.Errorf("LastOutcome = %s, want pass", r.LastOutcome)
	}
	want := (0.5 + 2*0.9) / 3
	if math.Abs(r.Score-want) > 1e-9 {
		t.Errorf("Score = %f, want %f", r.Score, want)
	}
}

func TestRecord_OverwrittenScoreIsRederived(t *testing.T) {
	var r Record
	for _, a := range scores(0.3, 0.8, 0.95) {
		r.Apply(a, 5)
	}
	derived := r.Score

	r.Score = 0.01
	r.Attempts = 99
	r.Rederive(5)

	if r.Score != derived {
		t.Errorf("Score after rederive = %f, want %f", r.Score, derived)
	}
	if r.Attempts != 3 {
		t.Errorf("Attempts after rederive = %d, want 3", r.Attempts)
	}
}

func TestRecord_RecentOutcomes(t *testing.T) {
	var r Record
	for _, a := range scores(0.9, 0.2, 0.3) {
		r.Apply(a, 5)
	}
	got := r.RecentOutcomes(2)
	if len(got) != 2 || got[0] != quiz.OutcomeRemediate || got[1] != quiz.OutcomeRemediate {
		t.Errorf("RecentOutcomes(2) = %v", got)
	}
	if all := r.RecentOutcomes(10); len(all) != 3 {
		t.Errorf("RecentOutcomes(10) len = %d, want 3", len(all))
	}
}
