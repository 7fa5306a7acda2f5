// Package content holds the module catalog and the adapter that picks the
// variant and pacing for a learner.
package content

import (
	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/config"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// PaceHint tells the conversational layer how to pace the next content.
type PaceHint string

const (
	PaceSlowDown PaceHint = "slow_down"
	PaceMaintain PaceHint = "maintain"
	PaceSpeedUp  PaceHint = "speed_up"
)

// Selection is the variant chosen for a learner.
type Selection struct {
	ModuleID    string            `json:"module_id"`
	Requested   proficiency.Level `json:"requested_level"`
	Served      proficiency.Level `json:"served_level"`
	UsedDefault bool              `json:"used_default"`
	Variant     Variant           `json:"variant"`
}

// Fallback reports whether the served variant differs from the requested
// level.
func (s Selection) Fallback() bool {
	return s.UsedDefault || s.Served != s.Requested
}

// Adapter selects content and pacing. It is a pure function of its inputs.
type Adapter struct {
	cfg config.Pacing
}

// NewAdapter creates an Adapter from the pacing section.
func NewAdapter(cfg config.Pacing) *Adapter {
	return &Adapter{cfg: cfg}
}

// Select returns the variant for level. Without an exact match it walks
// down one level at a time toward Beginner, then to the module default.
// It never serves a higher level or another module's content.
func (a *Adapter) Select(level proficiency.Level, m *Module) (Selection, error) {
	if m == nil {
		return Selection{}, apperr.Invalid("module_id", "no module given")
	}
	if !level.Valid() {
		return Selection{}, apperr.InvalidValue("level", int(level), "unknown proficiency level")
	}

	for l, ok := level, true; ok; l, ok = l.Lower() {
		if v, found := m.Variants[l]; found {
			return Selection{ModuleID: m.ID, Requested: level, Served: l, Variant: v}, nil
		}
	}
	if m.Default != nil {
		return Selection{ModuleID: m.ID, Requested: level, Served: level, UsedDefault: true, Variant: *m.Default}, nil
	}
	return Selection{}, apperr.InvalidValue("module_id", m.ID,
		"module %q has no variant at or below %s and no default", m.ID, level)
}

// PaceHint reads the trailing outcomes in the remediation window: two or
// more consecutive remediations slow down; two or more consecutive passes
// with mastery at or above the speed-up mark speed up.
func (a *Adapter) PaceHint(rec mastery.Record) PaceHint {
	recent := rec.RecentOutcomes(a.cfg.Window)
	if len(recent) == 0 {
		return PaceMaintain
	}

	last := recent[len(recent)-1]
	run := 0
	for i := len(recent) - 1; i >= 0 && recent[i] == last; i-- {
		run++
	}
	if run < 2 {
		return PaceMaintain
	}

	switch last {
	case quiz.OutcomeRemediate:
		return PaceSlowDown
	case quiz.OutcomePass:
		if rec.Score+1e-9 >= a.cfg.SpeedUpMastery {
			return PaceSpeedUp
		}
	}
	return PaceMaintain
}

// Focus returns the module sections covering missed topics, in module
// order, for the remediation path.
func Focus(m *Module, missedTopics []string) []Section {
	if m == nil || len(missedTopics) == 0 {
		return nil
	}
	missed := make(map[string]bool, len(missedTopics))
	for _, t := range missedTopics {
		missed[t] = true
	}
	var out []Section
	for _, s := range m.Sections {
		if missed[s.Topic] {
			out = append(out, s)
		}
	}
	return out
}
