package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptutor/internal/apperr"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptutor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
quiz:
  pass_threshold: 0.8
retake:
  cooldown: 30m
bands:
  intermediate: 0.5
  advanced: 0.8
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Quiz.PassThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Retake.Cooldown)
	assert.Equal(t, 0.5, cfg.Bands.Intermediate)
	// untouched sections keep defaults
	assert.Equal(t, 5, cfg.Diagnostic.MinQuestions)
	assert.Equal(t, 1.5, cfg.Diagnostic.Weights["medium"])
}

func TestDecodeReplacesWeights(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode([]byte("diagnostic:\n  weights:\n    basic: 1\n    expert: 3\n"), &cfg))
	assert.Equal(t, map[string]float64{"basic": 1, "expert": 3}, cfg.Diagnostic.Weights)
}

func TestDecodeKeepsWeightsWhenAbsent(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode([]byte("diagnostic:\n  min_questions: 3\n"), &cfg))
	assert.Equal(t, 3, cfg.Diagnostic.MinQuestions)
	assert.Equal(t, Default().Diagnostic.Weights, cfg.Diagnostic.Weights)

	cfg = Default()
	require.NoError(t, Decode(nil, &cfg))
	assert.Len(t, cfg.Diagnostic.Weights, 3)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "quiz:\n  pass_mark: 0.5\n"},
		{"bands out of order", "bands:\n  intermediate: 0.9\n  advanced: 0.5\n"},
		{"threshold above one", "quiz:\n  pass_threshold: 1.5\n"},
		{"pacing window too small", "pacing:\n  window: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, Decode([]byte(tt.yaml), &cfg))
		})
	}
}

func TestValidateReportsFields(t *testing.T) {
	cfg := Default()
	cfg.Mastery.Floor = 0
	cfg.Diagnostic.MinQuestions = 0

	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	var ves apperr.ValidationErrors
	require.ErrorAs(t, err, &ves)
	fields := make([]string, 0, len(ves))
	for _, v := range ves {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "mastery.floor")
	assert.Contains(t, fields, "diagnostic.min_questions")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ADAPTUTOR_PASS_THRESHOLD", "0.65")
	t.Setenv("ADAPTUTOR_MASTERY_WINDOW", "8")
	t.Setenv("ADAPTUTOR_RETAKE_COOLDOWN", "90m")

	cfg, err := FromEnv(Default())
	require.NoError(t, err)
	assert.Equal(t, 0.65, cfg.Quiz.PassThreshold)
	assert.Equal(t, 8, cfg.Mastery.Window)
	assert.Equal(t, 90*time.Minute, cfg.Retake.Cooldown)
}

func TestFromEnvReclassifyAndRetake(t *testing.T) {
	t.Setenv("ADAPTUTOR_RECLASSIFY_ENABLED", "false")
	t.Setenv("ADAPTUTOR_RECLASSIFY_MIN_MODULES", "4")
	t.Setenv("ADAPTUTOR_RETAKE_MAX_ATTEMPTS", "5")

	cfg, err := FromEnv(Default())
	require.NoError(t, err)
	assert.False(t, cfg.Reclassify.Enabled)
	assert.Equal(t, 4, cfg.Reclassify.MinModules)
	assert.Equal(t, 5, cfg.Retake.MaxCooldownAttempts)
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("ADAPTUTOR_MASTERY_FLOOR", "high")
	_, err := FromEnv(Default())
	assert.Error(t, err)

	t.Setenv("ADAPTUTOR_MASTERY_FLOOR", "")
	t.Setenv("ADAPTUTOR_RECLASSIFY_ENABLED", "sometimes")
	_, err = FromEnv(Default())
	assert.Error(t, err)
}
