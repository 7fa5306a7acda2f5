package mastery

import "github.com/abhisek/adaptutor/internal/quiz"

// Next applies ev to a module in state from. It returns the new state and
// a transition, or a nil transition when the state is unchanged.
//
//	not_started  --diagnosed-->          diagnosed
//	diagnosed    --content-requested-->  in_progress
//	mastered     --content-requested-->  in_progress
//	remediating  --content-requested-->  in_progress
//	in_progress  --quiz pass, mastery >= floor-->  mastered
//	in_progress  --quiz remediate-->     remediating
func Next(moduleID string, from State, ev Event, floor float64) (State, *StateTransition, error) {
	to, trigger, err := next(from, ev, floor)
	if err != nil {
		return from, nil, err
	}
	if to == from {
		return from, nil, nil
	}
	return to, &StateTransition{ModuleID: moduleID, From: from, To: to, Trigger: trigger}, nil
}

func next(from State, ev Event, floor float64) (State, Trigger, error) {
	switch ev.Kind {
	case EventDiagnosed:
		// A repeated diagnostic leaves module progress alone.
		if from == StateNotStarted {
			return StateDiagnosed, TriggerDiagnostic, nil
		}
		return from, "", nil

	case EventContentRequested:
		switch from {
		case StateDiagnosed, StateMastered, StateRemediating:
			return StateInProgress, TriggerContentRequest, nil
		case StateInProgress:
			return from, "", nil
		}

	case EventQuizGraded:
		if from != StateInProgress {
			break
		}
		switch ev.Outcome {
		case quiz.OutcomeRemediate:
			return StateRemediating, TriggerQuizRemediate, nil
		case quiz.OutcomePass:
			if ev.Mastery+1e-9 >= floor {
				return StateMastered, TriggerQuizPass, nil
			}
			// Passed, but mastery has not reached the floor yet.
			return from, "", nil
		}
	}
	return from, "", &ErrInvalidTransition{From: from, Event: ev.Kind}
}
