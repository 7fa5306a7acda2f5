package content

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/config"
	"github.com/abhisek/adaptutor/internal/proficiency"
	"github.com/abhisek/adaptutor/internal/quiz"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", c.Format())
	assert.Equal(t, []string{"intro_to_ai", "python_basics"}, c.IDs())

	for _, m := range c.Modules() {
		for _, l := range proficiency.AllLevels() {
			assert.True(t, m.HasVariant(l), "%s missing %s", m.ID, l)
		}
		assert.Len(t, m.Quiz.Questions, 3)
		assert.Equal(t, m.ID, m.Quiz.ModuleID)
	}
}

func TestDefaultCatalog_QuizGradesCanonicalAnswers(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	m, err := c.Module("python_basics")
	require.NoError(t, err)

	g := quiz.NewGrader(config.Default().Quiz)
	att := quiz.Attempt{ModuleID: m.ID}
	for _, q := range m.Quiz.Questions {
		att.Answers = append(att.Answers, quiz.Answer{QuestionID: q.ID, Response: q.Answer})
	}
	res, err := g.Grade(m.Quiz, att)
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomePass, res.Outcome)
	assert.InDelta(t, 1.0, res.Score, 1e-9)
}

func TestCatalog_ModuleNotFound(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	_, err = c.Module("nope")
	assert.True(t, apperr.IsNotFound(err))
}

const minimalModule = `{"id": "m1", "title": "M", "variants": %s, "quiz": [{"id": "q1", "answer": "x", "weight": 1}]}`

func catalogWith(format, variants string) []byte {
	return []byte(`{"format": "` + format + `", "modules": [` +
		fmt.Sprintf(minimalModule, variants) + `]}`)
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		doc     []byte
		wantErr bool
	}{
		{
			name: "all levels",
			doc:  catalogWith("v1.2.0", `{"beginner": {"body": "b"}, "intermediate": {"body": "i"}, "advanced": {"body": "a"}}`),
		},
		{
			name: "default covers missing levels",
			doc:  catalogWith("v1.0.0", `{"advanced": {"body": "a"}, "default": {"body": "d"}}`),
		},
		{
			name:    "missing level without default",
			doc:     catalogWith("v1.0.0", `{"intermediate": {"body": "i"}, "advanced": {"body": "a"}}`),
			wantErr: true,
		},
		{
			name:    "unsupported major version",
			doc:     catalogWith("v2.0.0", `{"default": {"body": "d"}}`),
			wantErr: true,
		},
		{
			name:    "unknown level key",
			doc:     catalogWith("v1.0.0", `{"expert": {"body": "e"}, "default": {"body": "d"}}`),
			wantErr: true,
		},
		{
			name:    "not json",
			doc:     []byte(`{`),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(tt.doc)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsValidation(err), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseCatalog_DuplicateModule(t *testing.T) {
	mod := fmt.Sprintf(minimalModule, `{"default": {"body": "d"}}`)
	_, err := ParseCatalog([]byte(`{"format": "v1.0.0", "modules": [` + mod + `,` + mod + `]}`))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, catalogWith("v1.0.0", `{"default": {"body": "d"}}`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	m, err := c.Module("m1")
	require.NoError(t, err)
	require.NotNil(t, m.Default)

	sel, err := newTestAdapter().Select(proficiency.Advanced, m)
	require.NoError(t, err)
	assert.True(t, sel.UsedDefault)
}
