package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toodl-app/mind/pkg/domain"
)

func TestParseTokenModel(t *testing.T) {
	t.Run("valid artifact", func(t *testing.T) {
		model, err := ParseTokenModel([]byte(`{
			"vocabulary": {"bias": 0, "has_digit": 1},
			"coef": [[1, 0], [0, 1]],
			"intercept": [0, 0],
			"classes": ["O", "B-GROUP"]
		}`))
		require.NoError(t, err)
		assert.Len(t, model.Vocabulary, 2)
		assert.Equal(t, []string{"O", "B-GROUP"}, model.Classes)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseTokenModel([]byte(`{not json`))
		assert.ErrorIs(t, err, domain.ErrModelMalformed)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		_, err := ParseTokenModel([]byte(`{
			"vocabulary": {"bias": 0},
			"coef": [[1]],
			"intercept": [0, 0],
			"classes": ["O", "B-GROUP"]
		}`))
		assert.ErrorIs(t, err, domain.ErrModelMalformed)
	})

	t.Run("row width mismatch", func(t *testing.T) {
		_, err := ParseTokenModel([]byte(`{
			"vocabulary": {"bias": 0, "has_digit": 1},
			"coef": [[1], [0, 1]],
			"intercept": [0, 0],
			"classes": ["O", "B-GROUP"]
		}`))
		assert.ErrorIs(t, err, domain.ErrModelMalformed)
	})

	t.Run("empty artifact", func(t *testing.T) {
		_, err := ParseTokenModel([]byte(`{}`))
		assert.ErrorIs(t, err, domain.ErrModelMalformed)
	})
}

func TestParseRouterModel(t *testing.T) {
	t.Run("valid artifact", func(t *testing.T) {
		model, err := ParseRouterModel([]byte(`{
			"vocabulary": {"add": 0},
			"idf": [1.5],
			"ngram_range": [1, 2],
			"coef": [[2.0]],
			"intercept": [-1.0],
			"classes": ["not_command", "command"]
		}`))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, model.NgramRange)
	})

	t.Run("missing ngram range defaults to unigrams", func(t *testing.T) {
		model, err := ParseRouterModel([]byte(`{
			"vocabulary": {"add": 0},
			"idf": [1],
			"coef": [[1]],
			"intercept": [0]
		}`))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1}, model.NgramRange)
	})

	t.Run("idf length mismatch", func(t *testing.T) {
		_, err := ParseRouterModel([]byte(`{
			"vocabulary": {"add": 0, "log": 1},
			"idf": [1],
			"coef": [[1, 1]],
			"intercept": [0]
		}`))
		assert.ErrorIs(t, err, domain.ErrModelMalformed)
	})
}

func TestLoadTokenModel(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTokenModel(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, domain.ErrModelMissing)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := LoadTokenModel(path)
		assert.ErrorIs(t, err, domain.ErrModelMalformed)
	})
}

func TestEmbeddedDefaults(t *testing.T) {
	token, err := DefaultTokenModel()
	require.NoError(t, err)
	assert.Contains(t, token.Classes, "O")
	assert.Contains(t, token.Classes, "B-GROUP")

	command, intent, err := DefaultRouterModels()
	require.NoError(t, err)
	assert.NotEmpty(t, command.Vocabulary)
	require.Len(t, intent.Coef, 3)
	assert.ElementsMatch(t,
		[]string{"add_expense", "add_budget_entry", "add_flow_task"},
		intent.Classes)
}
