// Package proficiency holds the level definitions and the score bands that
// map a normalised score onto a level.
package proficiency

import (
	"math"

	"github.com/abhisek/adaptutor/internal/apperr"
)

// boundaryEpsilon absorbs float noise from weighted sums so that a score
// meant to sit on a boundary is treated as reaching it.
const boundaryEpsilon = 1e-9

// Bands holds the lower bound of each level above Beginner. A score equal
// to a bound belongs to the higher level.
type Bands struct {
	Intermediate float64 `yaml:"intermediate" json:"intermediate" validate:"gt=0,ltfield=Advanced"`
	Advanced     float64 `yaml:"advanced" json:"advanced" validate:"lte=1"`
}

// DefaultBands returns the 0.4 / 0.75 bands.
func DefaultBands() Bands {
	return Bands{Intermediate: 0.4, Advanced: 0.75}
}

// Validate checks that the bands are strictly increasing inside (0, 1].
func (b Bands) Validate() error {
	return apperr.ValidateStruct(b)
}

// Classify maps score in [0, 1] onto a level.
func (b Bands) Classify(score float64) (Level, error) {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return 0, apperr.InvalidValue("score", score, "must be within [0, 1]")
	}
	switch {
	case score+boundaryEpsilon >= b.Advanced:
		return Advanced, nil
	case score+boundaryEpsilon >= b.Intermediate:
		return Intermediate, nil
	default:
		return Beginner, nil
	}
}

// Floor returns the lowest score that classifies as l.
func (b Bands) Floor(l Level) float64 {
	switch l {
	case Advanced:
		return b.Advanced
	case Intermediate:
		return b.Intermediate
	default:
		return 0
	}
}
