package content

import (
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

// Format is a delivery format for a content variant.
type Format string

const (
	FormatVideo    Format = "video"
	FormatText     Format = "text"
	FormatVisual   Format = "visual"
	FormatActivity Format = "activity"
)

// AllFormats returns the delivery formats in display order.
func AllFormats() []Format {
	return []Format{FormatVideo, FormatText, FormatVisual, FormatActivity}
}

// Variant is the difficulty-specific rendition of a module.
type Variant struct {
	Body          string            `json:"body"`
	Formats       map[Format]string `json:"formats,omitempty"`
	EstimatedTime string            `json:"estimated_time,omitempty"`
}

// Section is topic-tagged sub-content used to target remediation.
type Section struct {
	Topic string `json:"topic"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Module is a unit of course content with one variant per level, or a
// default variant covering the missing ones.
type Module struct {
	ID       string
	Title    string
	Body     string
	Variants map[proficiency.Level]Variant
	Default  *Variant
	Sections []Section
	Quiz     quiz.Rubric
}

// HasVariant reports whether the module carries a variant for l.
func (m *Module) HasVariant(l proficiency.Level) bool {
	_, ok := m.Variants[l]
	return ok
}
