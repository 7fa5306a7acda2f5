// Package diagnostic scores the global diagnostic quiz and classifies the
// learner onto a proficiency level.
package diagnostic

import (
	"sort"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/config"
	"github.com/abhisek/adaptutor/internal/proficiency"
)

// Difficulty tags a diagnostic question. Tags are open-ended; each one
// used in an attempt must have a configured weight.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Response is one answered diagnostic question.
type Response struct {
	QuestionID string     `json:"question_id" validate:"required"`
	Correct    bool       `json:"correct"`
	Difficulty Difficulty `json:"difficulty" validate:"required"`
}

// Attempt is an ordered diagnostic submission.
type Attempt struct {
	Responses []Response `json:"responses" validate:"dive"`
}

// Result is the classification of one attempt.
type Result struct {
	Score     float64           `json:"score"`
	Level     proficiency.Level `json:"level"`
	Pace      proficiency.Pace  `json:"pace"`
	Questions int               `json:"questions"`
	Correct   int               `json:"correct"`
}

// Engine evaluates diagnostic attempts. It holds no state between calls.
type Engine struct {
	cfg   config.Diagnostic
	bands proficiency.Bands
}

// NewEngine creates an Engine from the diagnostic section and the bands.
func NewEngine(cfg config.Diagnostic, bands proficiency.Bands) *Engine {
	return &Engine{cfg: cfg, bands: bands}
}

// Evaluate scores the attempt as weighted correctness over difficulty tags
// and classifies the score. A score on a band boundary takes the higher
// level.
func (e *Engine) Evaluate(attempt Attempt) (Result, error) {
	if err := e.validate(attempt); err != nil {
		return Result{}, err
	}

	var earned, total float64
	correct := 0
	for _, r := range attempt.Responses {
		w := e.cfg.Weights[string(r.Difficulty)]
		total += w
		if r.Correct {
			earned += w
			correct++
		}
	}

	score := earned / total
	level, err := e.bands.Classify(score)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Score:     score,
		Level:     level,
		Pace:      proficiency.PaceFor(level),
		Questions: len(attempt.Responses),
		Correct:   correct,
	}, nil
}

func (e *Engine) validate(attempt Attempt) error {
	if err := apperr.ValidateStruct(attempt); err != nil {
		return err
	}
	if n := len(attempt.Responses); n < e.cfg.MinQuestions {
		return apperr.InvalidValue("responses", n,
			"has %d questions; a diagnostic needs at least %d", n, e.cfg.MinQuestions)
	}

	seen := make(map[string]bool, len(attempt.Responses))
	for _, r := range attempt.Responses {
		if seen[r.QuestionID] {
			return apperr.InvalidValue("responses", r.QuestionID, "question %q answered more than once", r.QuestionID)
		}
		seen[r.QuestionID] = true

		if _, ok := e.cfg.Weights[string(r.Difficulty)]; !ok {
			return apperr.InvalidValue("difficulty", r.Difficulty,
				"unknown difficulty %q (known: %v)", r.Difficulty, e.knownDifficulties())
		}
	}
	return nil
}

func (e *Engine) knownDifficulties() []string {
	out := make([]string, 0, len(e.cfg.Weights))
	for k := range e.cfg.Weights {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
