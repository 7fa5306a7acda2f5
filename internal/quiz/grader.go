// Package quiz grades module quiz attempts against a rubric and decides
// between passing and remediation.
package quiz

import (
	"math"
	"sort"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/config"
)

// Grader scores attempts. It holds no state between calls.
type Grader struct {
	cfg config.Quiz
}

// NewGrader creates a Grader from the quiz section of the configuration.
func NewGrader(cfg config.Quiz) *Grader {
	return &Grader{cfg: cfg}
}

// PassThreshold returns the configured pass threshold.
func (g *Grader) PassThreshold() float64 {
	return g.cfg.PassThreshold
}

// Grade scores attempt against rubric. The score is the weight of correct
// answers over the weight of the whole rubric; unanswered questions count
// as missed. The outcome is Pass only when the score reaches the threshold
// and no critical question was missed.
func (g *Grader) Grade(rubric Rubric, attempt Attempt) (Result, error) {
	if err := validateAttempt(rubric, attempt); err != nil {
		return Result{}, err
	}

	responses := make(map[string]string, len(attempt.Answers))
	for _, a := range attempt.Answers {
		responses[a.QuestionID] = a.Response
	}

	res := Result{Total: len(rubric.Questions)}
	missed := make(map[string]bool)
	var earned float64
	for _, q := range rubric.Questions {
		resp, answered := responses[q.ID]
		ok := answered && CheckAnswer(resp, q)
		res.Questions = append(res.Questions, QuestionResult{
			QuestionID: q.ID,
			Correct:    ok,
			Answered:   answered,
			Weight:     q.Weight,
			Topic:      q.TopicTag(),
			Critical:   q.Critical,
		})
		if ok {
			earned += q.Weight
			res.Correct++
			continue
		}
		missed[q.TopicTag()] = true
		if q.Critical {
			res.CriticalMissed = append(res.CriticalMissed, q.ID)
		}
	}

	res.Score = earned / rubric.TotalWeight()
	res.MissedTopics = sortedKeys(missed)

	res.Outcome = OutcomeRemediate
	if res.Score+1e-9 >= g.cfg.PassThreshold && len(res.CriticalMissed) == 0 {
		res.Outcome = OutcomePass
	}
	return res, nil
}

func validateAttempt(rubric Rubric, attempt Attempt) error {
	if len(rubric.Questions) == 0 || rubric.TotalWeight() <= 0 {
		return apperr.InvalidValue("module_id", rubric.ModuleID, "module %q has no gradable quiz", rubric.ModuleID)
	}
	if err := apperr.ValidateStruct(attempt); err != nil {
		return err
	}
	if attempt.ModuleID != rubric.ModuleID {
		return apperr.InvalidValue("module_id", attempt.ModuleID,
			"attempt is for module %q, rubric is for %q", attempt.ModuleID, rubric.ModuleID)
	}

	seen := make(map[string]bool, len(attempt.Answers))
	for _, a := range attempt.Answers {
		q, ok := rubric.Question(a.QuestionID)
		if !ok {
			return apperr.InvalidValue("question_id", a.QuestionID,
				"question %q is not in the rubric for module %q", a.QuestionID, rubric.ModuleID)
		}
		if seen[a.QuestionID] {
			return apperr.InvalidValue("question_id", a.QuestionID, "question %q answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = true

		if a.CorrectAnswer != "" && normalize(a.CorrectAnswer) != normalize(q.Answer) {
			return apperr.InvalidValue("correct_answer", a.CorrectAnswer,
				"does not match the rubric for question %q", a.QuestionID)
		}
		if a.Weight != 0 && math.Abs(a.Weight-q.Weight) > 1e-9 {
			return apperr.InvalidValue("weight", a.Weight,
				"does not match the rubric weight %g for question %q", q.Weight, a.QuestionID)
		}
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
