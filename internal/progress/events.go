package progress

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/diagnostic"
	"github.com/abhisek/adaptutor/internal/learner"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/notify"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

const (
	undiagnosed         = "undiagnosed"
	triggerReclassify   = "reclassification"
	escalateRemediation = 2
)

// SubmitDiagnostic scores a diagnostic attempt and sets the student's
// level, creating the student on first contact. Every catalog module not
// yet started becomes diagnosed.
func (t *Tracker) SubmitDiagnostic(ctx context.Context, studentID string, attempt diagnostic.Attempt) (dec DiagnosticDecision, err error) {
	ctx, span := t.startSpan(ctx, "progress.SubmitDiagnostic", studentID)
	defer func() { endSpan(span, err) }()

	if err := validateStudentID(studentID); err != nil {
		return DiagnosticDecision{}, err
	}
	res, err := t.engine.Evaluate(attempt)
	if err != nil {
		return DiagnosticDecision{}, err
	}
	attemptID := t.newID()

	var committedAt time.Time
	err = t.update(ctx, studentID, true, func(s *learner.Student, now time.Time) error {
		dec = DiagnosticDecision{
			StudentID: studentID,
			AttemptID: attemptID,
			Score:     res.Score,
			Level:     res.Level,
			Pace:      res.Pace,
			Correct:   res.Correct,
			Questions: res.Questions,
		}

		from := undiagnosed
		if s.Diagnosed {
			from = s.Level.String()
		}
		if !s.Diagnosed || s.Level != res.Level {
			if s.Diagnosed {
				dec.LevelChange = &LevelChange{From: s.Level, To: res.Level}
			}
			dec.Transitions = append(dec.Transitions, recordLevel(s, from, res.Level, string(mastery.TriggerDiagnostic), now))
		}
		s.Level = res.Level
		s.Diagnosed = true
		s.Diagnostics = append(s.Diagnostics, learner.DiagnosticRecord{
			ID:        attemptID,
			At:        now,
			Responses: slices.Clone(attempt.Responses),
			Score:     res.Score,
			Level:     res.Level,
		})

		for _, id := range t.catalog.IDs() {
			tr, err := t.step(s, id, mastery.Event{Kind: mastery.EventDiagnosed}, now)
			if err != nil {
				return err
			}
			if tr != nil {
				dec.Transitions = append(dec.Transitions, *tr)
			}
		}
		committedAt = now
		return nil
	})
	if err != nil {
		return DiagnosticDecision{}, err
	}

	t.logger.Info("diagnostic recorded",
		"student_id", studentID, "attempt_id", attemptID,
		"score", res.Score, "level", res.Level.String())
	t.publish(ctx, notify.TopicDiagnostic, studentID, "", committedAt, dec)
	return dec, nil
}

// RequestModule serves the module variant for the student's level and
// moves the module into progress. The student must have been diagnosed.
func (t *Tracker) RequestModule(ctx context.Context, studentID, moduleID string) (dec ModuleDecision, err error) {
	ctx, span := t.startSpan(ctx, "progress.RequestModule", studentID, attribute.String("module.id", moduleID))
	defer func() { endSpan(span, err) }()

	if err := validateStudentID(studentID); err != nil {
		return ModuleDecision{}, err
	}
	m, err := t.catalog.Module(moduleID)
	if err != nil {
		return ModuleDecision{}, err
	}

	var committedAt time.Time
	err = t.update(ctx, studentID, false, func(s *learner.Student, now time.Time) error {
		if !s.Diagnosed {
			return apperr.NotFound("diagnosed student", studentID)
		}
		sel, err := t.adapter.Select(s.Level, m)
		if err != nil {
			return err
		}

		p := s.Module(moduleID)
		dec = ModuleDecision{
			StudentID: studentID,
			ModuleID:  moduleID,
			Title:     m.Title,
			Level:     s.Level,
			Selection: sel,
		}
		if p.State == mastery.StateRemediating {
			dec.Focus = content.Focus(m, lastMissedTopics(p))
		}

		// Modules added to the catalog after diagnosis start here.
		if p.State == mastery.StateNotStarted {
			tr, err := t.step(s, moduleID, mastery.Event{Kind: mastery.EventDiagnosed}, now)
			if err != nil {
				return err
			}
			if tr != nil {
				dec.Transitions = append(dec.Transitions, *tr)
			}
		}
		tr, err := t.step(s, moduleID, mastery.Event{Kind: mastery.EventContentRequested}, now)
		if err != nil {
			return err
		}
		if tr != nil {
			dec.Transitions = append(dec.Transitions, *tr)
		}

		requested := now
		p.LastRequestedAt = &requested
		dec.State = p.State
		dec.PaceHint = t.adapter.PaceHint(p.Mastery)
		committedAt = now
		return nil
	})
	if err != nil {
		return ModuleDecision{}, err
	}

	t.logger.Info("module served",
		"student_id", studentID, "module_id", moduleID,
		"served_level", dec.Selection.Served.String(), "pace_hint", string(dec.PaceHint))
	t.publish(ctx, notify.TopicModule, studentID, moduleID, committedAt, dec)
	return dec, nil
}

// SubmitQuiz grades an attempt for a module in progress, updates mastery
// and the module state, then re-classifies the student's level. An attempt
// carrying an id already recorded for the module is answered from the
// stored record without a write.
func (t *Tracker) SubmitQuiz(ctx context.Context, studentID string, attempt quiz.Attempt) (dec QuizDecision, err error) {
	ctx, span := t.startSpan(ctx, "progress.SubmitQuiz", studentID, attribute.String("module.id", attempt.ModuleID))
	defer func() { endSpan(span, err) }()

	if err := validateStudentID(studentID); err != nil {
		return QuizDecision{}, err
	}
	if err := apperr.ValidateStruct(attempt); err != nil {
		return QuizDecision{}, err
	}
	m, err := t.catalog.Module(attempt.ModuleID)
	if err != nil {
		return QuizDecision{}, err
	}
	res, err := t.grader.Grade(m.Quiz, attempt)
	if err != nil {
		return QuizDecision{}, err
	}
	attemptID := attempt.ID
	if attemptID == "" {
		attemptID = t.newID()
	}

	var committedAt time.Time
	err = t.update(ctx, studentID, false, func(s *learner.Student, now time.Time) error {
		p := s.Module(m.ID)

		if rec, ok := p.Quiz(attemptID); ok {
			if !slices.Equal(rec.Answers, attempt.Answers) {
				return apperr.InvalidValue("id", attemptID, "attempt id already used with different answers")
			}
			dec = t.replayDecision(s, m, p, rec)
			return errNoWrite
		}

		if p.State != mastery.StateInProgress {
			return apperr.InvalidValue("module_id", m.ID,
				"module %q is %s; request it before submitting a quiz", m.ID, p.State)
		}
		if p.RetakeAvailableAt != nil && now.Before(*p.RetakeAvailableAt) {
			return apperr.InvalidValue("module_id", m.ID,
				"retake of module %q available at %s", m.ID, p.RetakeAvailableAt.UTC().Format(time.RFC3339))
		}

		p.Mastery.Apply(mastery.AttemptScore{
			AttemptID: attemptID,
			Score:     res.Score,
			Outcome:   res.Outcome,
			At:        now,
		}, t.cfg.Mastery.Window)
		p.Quizzes = append(p.Quizzes, learner.QuizRecord{
			ID:             attemptID,
			At:             now,
			Answers:        slices.Clone(attempt.Answers),
			Score:          res.Score,
			Outcome:        res.Outcome,
			MissedTopics:   res.MissedTopics,
			CriticalMissed: res.CriticalMissed,
		})

		dec = QuizDecision{
			StudentID:      studentID,
			ModuleID:       m.ID,
			AttemptID:      attemptID,
			Score:          res.Score,
			Outcome:        res.Outcome,
			MissedTopics:   res.MissedTopics,
			CriticalMissed: res.CriticalMissed,
		}

		tr, err := t.step(s, m.ID, mastery.Event{
			Kind:    mastery.EventQuizGraded,
			Outcome: res.Outcome,
			Mastery: p.Mastery.Score,
		}, now)
		if err != nil {
			return err
		}
		if tr != nil {
			dec.Transitions = append(dec.Transitions, *tr)
		}

		p.RetakeAvailableAt = nil
		if res.Outcome == quiz.OutcomeRemediate {
			dec.Focus = content.Focus(m, res.MissedTopics)
			dec.Escalate = remediations(p) >= escalateRemediation
			if t.cfg.Retake.Cooldown > 0 && p.Mastery.Attempts < t.cfg.Retake.MaxCooldownAttempts {
				at := now.Add(t.cfg.Retake.Cooldown)
				p.RetakeAvailableAt = &at
			}
		}

		if lt, change := t.reclassify(s, res.Outcome, now); lt != nil {
			dec.Transitions = append(dec.Transitions, *lt)
			dec.LevelChange = change
		}

		dec.Record = p.Mastery
		dec.State = p.State
		dec.PaceHint = t.adapter.PaceHint(p.Mastery)
		dec.RetakeAvailableAt = p.RetakeAvailableAt
		dec.Level = s.Level
		committedAt = now
		return nil
	})
	if err != nil {
		return QuizDecision{}, err
	}
	if dec.Replayed {
		t.logger.Info("quiz attempt replayed", "student_id", studentID, "attempt_id", attemptID)
		return dec, nil
	}

	t.logger.Info("quiz graded",
		"student_id", studentID, "module_id", m.ID, "attempt_id", attemptID,
		"score", dec.Score, "outcome", string(dec.Outcome), "state", string(dec.State))
	if dec.Escalate {
		t.logger.Warn("repeated remediation", "student_id", studentID, "module_id", m.ID, "attempts", dec.Record.Attempts)
	}
	t.publish(ctx, notify.TopicQuiz, studentID, m.ID, committedAt, dec)
	return dec, nil
}

// step applies ev to a module and records any transition on the student.
func (t *Tracker) step(s *learner.Student, moduleID string, ev mastery.Event, now time.Time) (*learner.Transition, error) {
	p := s.Module(moduleID)
	to, st, err := mastery.Next(moduleID, p.State, ev, t.cfg.Mastery.Floor)
	if err != nil {
		return nil, apperr.InvalidValue("module_id", moduleID, "%v", err)
	}
	p.State = to
	if st == nil {
		return nil, nil
	}
	tr := learner.Transition{
		Kind:    learner.TransitionModule,
		Subject: moduleID,
		From:    string(st.From),
		To:      string(st.To),
		Trigger: string(st.Trigger),
		At:      now,
	}
	s.Record(tr)
	return &tr, nil
}

// reclassify moves the student's level at most one step toward the band
// of the aggregate mastery, once enough modules have attempts.
func (t *Tracker) reclassify(s *learner.Student, outcome quiz.Outcome, now time.Time) (*learner.Transition, *LevelChange) {
	if !t.cfg.Reclassify.Enabled {
		return nil, nil
	}
	agg, n := s.AggregateMastery()
	if n < t.cfg.Reclassify.MinModules {
		return nil, nil
	}
	target, err := t.cfg.Bands.Classify(agg)
	if err != nil {
		return nil, nil
	}
	next := proficiency.StepToward(s.Level, target)
	if next == s.Level {
		return nil, nil
	}
	change := &LevelChange{From: s.Level, To: next}
	tr := recordLevel(s, s.Level.String(), next, triggerReclassify+":"+string(outcome), now)
	s.Level = next
	return &tr, change
}

func recordLevel(s *learner.Student, from string, to proficiency.Level, trigger string, now time.Time) learner.Transition {
	tr := learner.Transition{
		Kind:    learner.TransitionLevel,
		Subject: s.ID,
		From:    from,
		To:      to.String(),
		Trigger: trigger,
		At:      now,
	}
	s.Record(tr)
	return tr
}

func (t *Tracker) replayDecision(s *learner.Student, m *content.Module, p *learner.ModuleProgress, rec learner.QuizRecord) QuizDecision {
	dec := QuizDecision{
		StudentID:         s.ID,
		ModuleID:          m.ID,
		AttemptID:         rec.ID,
		Score:             rec.Score,
		Outcome:           rec.Outcome,
		MissedTopics:      rec.MissedTopics,
		CriticalMissed:    rec.CriticalMissed,
		Record:            p.Mastery,
		State:             p.State,
		PaceHint:          t.adapter.PaceHint(p.Mastery),
		RetakeAvailableAt: p.RetakeAvailableAt,
		Level:             s.Level,
		Replayed:          true,
	}
	if rec.Outcome == quiz.OutcomeRemediate {
		dec.Focus = content.Focus(m, rec.MissedTopics)
	}
	return dec
}

func remediations(p *learner.ModuleProgress) int {
	n := 0
	for _, q := range p.Quizzes {
		if q.Outcome == quiz.OutcomeRemediate {
			n++
		}
	}
	return n
}

func lastMissedTopics(p *learner.ModuleProgress) []string {
	if len(p.Quizzes) == 0 {
		return nil
	}
	return p.Quizzes[len(p.Quizzes)-1].MissedTopics
}
