// Package config holds the single enumerated configuration object consumed
// by the tutoring core: proficiency bands, scoring weights, thresholds and
// windows. No component embeds these values as literals.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/proficiency"
)

// Config is supplied once at startup and never mutated afterwards.
type Config struct {
	Bands      proficiency.Bands `yaml:"bands" json:"bands"`
	Diagnostic Diagnostic        `yaml:"diagnostic" json:"diagnostic"`
	Quiz       Quiz              `yaml:"quiz" json:"quiz"`
	Mastery    Mastery           `yaml:"mastery" json:"mastery"`
	Pacing     Pacing            `yaml:"pacing" json:"pacing"`
	Reclassify Reclassify        `yaml:"reclassify" json:"reclassify"`
	Retake     Retake            `yaml:"retake" json:"retake"`
}

// Diagnostic configures the global diagnostic quiz.
type Diagnostic struct {
	// MinQuestions is the smallest attempt that can be classified.
	MinQuestions int `yaml:"min_questions" json:"min_questions" validate:"min=1"`
	// Weights maps a difficulty tag to the credit for answering it correctly.
	Weights map[string]float64 `yaml:"weights" json:"weights" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
}

// Quiz configures module quiz grading.
type Quiz struct {
	PassThreshold float64 `yaml:"pass_threshold" json:"pass_threshold" validate:"gt=0,lte=1"`
}

// Mastery configures how module mastery is derived from quiz history.
type Mastery struct {
	// Floor is the mastery score a passing attempt must lift the module to
	// before it counts as mastered.
	Floor float64 `yaml:"floor" json:"floor" validate:"gt=0,lte=1"`
	// Window is how many recent attempts feed the recency-weighted score.
	Window int `yaml:"window" json:"window" validate:"min=1"`
}

// Pacing configures the pace hint.
type Pacing struct {
	// Window is the remediation window: how many recent outcomes are read.
	Window int `yaml:"window" json:"window" validate:"min=2"`
	// SpeedUpMastery is the mastery needed before a passing streak speeds up.
	SpeedUpMastery float64 `yaml:"speed_up_mastery" json:"speed_up_mastery" validate:"gt=0,lte=1"`
}

// Reclassify configures the periodic re-evaluation of a learner's level
// from aggregate module mastery.
type Reclassify struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	MinModules int  `yaml:"min_modules" json:"min_modules" validate:"min=1"`
}

// Retake configures the wait imposed after a failed quiz.
type Retake struct {
	Cooldown time.Duration `yaml:"cooldown" json:"cooldown" validate:"gte=0"`
	// MaxCooldownAttempts stops imposing the cooldown once a module has
	// this many attempts; from then on the learner is escalated instead.
	MaxCooldownAttempts int `yaml:"max_cooldown_attempts" json:"max_cooldown_attempts" validate:"gte=0"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Bands: proficiency.DefaultBands(),
		Diagnostic: Diagnostic{
			MinQuestions: 5,
			Weights: map[string]float64{
				"easy":   1.0,
				"medium": 1.5,
				"hard":   2.0,
			},
		},
		Quiz: Quiz{PassThreshold: 0.7},
		Mastery: Mastery{
			Floor:  0.8,
			Window: 5,
		},
		Pacing: Pacing{
			Window:         3,
			SpeedUpMastery: 0.85,
		},
		Reclassify: Reclassify{
			Enabled:    true,
			MinModules: 2,
		},
		Retake: Retake{
			Cooldown:            2 * time.Hour,
			MaxCooldownAttempts: 3,
		},
	}
}

// Validate checks every section, including the band ordering.
func (c Config) Validate() error {
	return apperr.ValidateStruct(c)
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode overlays YAML data onto cfg and validates the result. A weights
// table in the data replaces cfg's table instead of merging into it.
func Decode(data []byte, cfg *Config) error {
	weights := cfg.Diagnostic.Weights
	cfg.Diagnostic.Weights = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		cfg.Diagnostic.Weights = weights
		return fmt.Errorf("parse config: %w", err)
	}
	if cfg.Diagnostic.Weights == nil {
		cfg.Diagnostic.Weights = weights
	}
	return cfg.Validate()
}

// FromEnv overlays ADAPTUTOR_* environment variables onto cfg.
func FromEnv(cfg Config) (Config, error) {
	floats := []struct {
		key string
		dst *float64
	}{
		{"ADAPTUTOR_BAND_INTERMEDIATE", &cfg.Bands.Intermediate},
		{"ADAPTUTOR_BAND_ADVANCED", &cfg.Bands.Advanced},
		{"ADAPTUTOR_PASS_THRESHOLD", &cfg.Quiz.PassThreshold},
		{"ADAPTUTOR_MASTERY_FLOOR", &cfg.Mastery.Floor},
		{"ADAPTUTOR_SPEED_UP_MASTERY", &cfg.Pacing.SpeedUpMastery},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ADAPTUTOR_DIAGNOSTIC_MIN_QUESTIONS", &cfg.Diagnostic.MinQuestions},
		{"ADAPTUTOR_MASTERY_WINDOW", &cfg.Mastery.Window},
		{"ADAPTUTOR_REMEDIATION_WINDOW", &cfg.Pacing.Window},
		{"ADAPTUTOR_RECLASSIFY_MIN_MODULES", &cfg.Reclassify.MinModules},
		{"ADAPTUTOR_RETAKE_MAX_ATTEMPTS", &cfg.Retake.MaxCooldownAttempts},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = parsed
	}

	if v := os.Getenv("ADAPTUTOR_RECLASSIFY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("ADAPTUTOR_RECLASSIFY_ENABLED: %w", err)
		}
		cfg.Reclassify.Enabled = b
	}

	if v := os.Getenv("ADAPTUTOR_RETAKE_COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("ADAPTUTOR_RETAKE_COOLDOWN: %w", err)
		}
		cfg.Retake.Cooldown = d
	}

	return cfg, cfg.Validate()
}
