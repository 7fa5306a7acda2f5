package progress

import (
	"context"
	"sort"

	"github.com/abhisek/adaptutor/internal/learner"
	"github.com/abhisek/adaptutor/internal/proficiency"
)

// recentTransitions is how many transitions Status reports.
const recentTransitions = 20

// TransitionLog is implemented by stores that keep the full transition
// history outside the aggregate.
type TransitionLog interface {
	Transitions(ctx context.Context, studentID string, limit int) ([]learner.Transition, error)
}

// Status returns a read-only view of the student. It takes no lock and
// never writes.
func (t *Tracker) Status(ctx context.Context, studentID string) (st StudentStatus, err error) {
	ctx, span := t.startSpan(ctx, "progress.Status", studentID)
	defer func() { endSpan(span, err) }()

	if err := validateStudentID(studentID); err != nil {
		return StudentStatus{}, err
	}
	s, err := t.store.Get(ctx, studentID)
	if err != nil {
		return StudentStatus{}, err
	}

	agg, _ := s.AggregateMastery()
	st = StudentStatus{
		StudentID:        s.ID,
		Level:            s.Level,
		Pace:             proficiency.PaceFor(s.Level),
		Diagnosed:        s.Diagnosed,
		Version:          s.Version,
		AggregateMastery: agg,
		Diagnostics:      len(s.Diagnostics),
		UpdatedAt:        s.UpdatedAt,
	}

	ids := make([]string, 0, len(s.Modules))
	for id := range s.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := s.Modules[id]
		ms := ModuleStatus{
			ModuleID:          id,
			State:             p.State,
			Mastery:           p.Mastery.Score,
			Attempts:          p.Mastery.Attempts,
			LastOutcome:       p.Mastery.LastOutcome,
			PaceHint:          t.adapter.PaceHint(p.Mastery),
			RetakeAvailableAt: p.RetakeAvailableAt,
		}
		if m, err := t.catalog.Module(id); err == nil {
			ms.Title = m.Title
		}
		st.Modules = append(st.Modules, ms)
	}

	tr := s.Transitions
	if len(tr) > recentTransitions {
		tr = tr[len(tr)-recentTransitions:]
	}
	st.Transitions = tr
	return st, nil
}

// History returns up to limit of the student's most recent transitions,
// oldest first. Stores with a full log answer from it; otherwise the
// bounded log on the aggregate is used.
func (t *Tracker) History(ctx context.Context, studentID string, limit int) (tr []learner.Transition, err error) {
	ctx, span := t.startSpan(ctx, "progress.History", studentID)
	defer func() { endSpan(span, err) }()

	if err := validateStudentID(studentID); err != nil {
		return nil, err
	}
	s, err := t.store.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if log, ok := t.store.(TransitionLog); ok {
		return log.Transitions(ctx, s.ID, limit)
	}
	tr = s.Transitions
	if limit > 0 && len(tr) > limit {
		tr = tr[len(tr)-limit:]
	}
	return tr, nil
}
