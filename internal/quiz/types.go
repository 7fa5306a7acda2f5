package quiz

// Outcome is the decision taken on a graded attempt.
type Outcome string

const (
	OutcomePass      Outcome = "pass"
	OutcomeRemediate Outcome = "remediate"
)

// Question is one rubric entry. The rubric is authoritative for the
// correct answer, weight, topic and critical flag.
type Question struct {
	ID     string   `json:"id"`
	Prompt string   `json:"prompt"`
	Answer string   `json:"answer"`
	Accept []string `json:"accept,omitempty"` // alternate accepted answers
	Weight float64  `json:"weight"`
	Topic  string   `json:"topic,omitempty"`
	// Critical marks prerequisite knowledge: missing it forces remediation.
	Critical bool `json:"critical,omitempty"`
}

// TopicTag returns the tag reported when the question is missed.
func (q Question) TopicTag() string {
	if q.Topic != "" {
		return q.Topic
	}
	return q.ID
}

// Rubric is a module's quiz definition.
type Rubric struct {
	ModuleID  string     `json:"module_id"`
	Questions []Question `json:"questions"`
}

// Question looks up a rubric question by id.
func (r Rubric) Question(id string) (Question, bool) {
	for _, q := range r.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// TotalWeight returns the sum of all question weights.
func (r Rubric) TotalWeight() float64 {
	var total float64
	for _, q := range r.Questions {
		total += q.Weight
	}
	return total
}

// Answer is one submitted response. CorrectAnswer and Weight are optional
// echoes of the rubric; when present they must agree with it.
type Answer struct {
	QuestionID    string  `json:"question_id" validate:"required"`
	Response      string  `json:"answer"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	Weight        float64 `json:"weight,omitempty" validate:"gte=0"`
}

// Attempt is an immutable quiz submission for one module.
type Attempt struct {
	// ID makes resubmission of the same attempt idempotent. Optional.
	ID       string   `json:"id,omitempty"`
	ModuleID string   `json:"module_id" validate:"required"`
	Answers  []Answer `json:"answers" validate:"required,min=1,dive"`
}

// QuestionResult is the per-question grading detail.
type QuestionResult struct {
	QuestionID string  `json:"question_id"`
	Correct    bool    `json:"correct"`
	Answered   bool    `json:"answered"`
	Weight     float64 `json:"weight"`
	Topic      string  `json:"topic"`
	Critical   bool    `json:"critical,omitempty"`
}

// Result is the structured grading signal. MissedTopics drives which
// sub-content is prioritised next; it is not learner-facing text.
type Result struct {
	Score          float64          `json:"score"`
	Outcome        Outcome          `json:"outcome"`
	MissedTopics   []string         `json:"missed_topics"`
	CriticalMissed []string         `json:"critical_missed,omitempty"`
	Correct        int              `json:"correct"`
	Total          int              `json:"total"`
	Questions      []QuestionResult `json:"questions"`
}
