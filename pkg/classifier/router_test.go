package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandTestModel() *RouterModel {
	return &RouterModel{
		Vocabulary: map[string]int{"add": 0, "expense": 1, "hello": 2},
		IDF:        []float64{1, 1, 1},
		NgramRange: []int{1, 1},
		Coef:       [][]float64{{2, 2, -3}},
		Intercept:  []float64{-1},
		Classes:    []string{"not_command", "command"},
	}
}

func intentTestModel() *RouterModel {
	return &RouterModel{
		Vocabulary: map[string]int{"expense": 0, "budget": 1, "schedule": 2},
		IDF:        []float64{1, 1, 1},
		NgramRange: []int{1, 1},
		Coef: [][]float64{
			{3, -1, -1},
			{-1, 3, -1},
			{-1, -1, 3},
		},
		Intercept: []float64{0, 0, 0},
		Classes:   []string{"add_expense", "add_budget_entry", "add_flow_task"},
	}
}

func TestRouterClassify(t *testing.T) {
	router := NewRouter(commandTestModel(), intentTestModel(), 0)

	t.Run("command with intent", func(t *testing.T) {
		result := router.Classify("Add expense")
		// z = 2 + 2 - 1 = 3 -> sigmoid = 0.9526
		assert.InDelta(t, 0.9526, result.ProbCommand, 1e-4)
		assert.True(t, result.IsCommand)
		require.NotNil(t, result.TopIntent)
		assert.Equal(t, "add_expense", result.TopIntent.Label)
		assert.Len(t, result.IntentProbabilities, 3)
	})

	t.Run("chatter falls below threshold", func(t *testing.T) {
		result := router.Classify("hello")
		// z = -3 - 1 = -4 -> sigmoid = 0.018
		assert.InDelta(t, 0.018, result.ProbCommand, 1e-3)
		assert.False(t, result.IsCommand)
		assert.Nil(t, result.TopIntent)
	})

	t.Run("out-of-vocabulary text scores zero", func(t *testing.T) {
		result := router.Classify("xylophone zebra")
		assert.Zero(t, result.ProbCommand)
		assert.False(t, result.IsCommand)
	})

	t.Run("empty text scores zero", func(t *testing.T) {
		result := router.Classify("   ")
		assert.Zero(t, result.ProbCommand)
	})

	t.Run("punctuation is sanitized away", func(t *testing.T) {
		with := router.Classify("add, expense!")
		without := router.Classify("add expense")
		assert.Equal(t, without, with)
	})
}

func TestRouterStopWords(t *testing.T) {
	command := commandTestModel()
	command.StopWords = []string{"please"}
	router := NewRouter(command, nil, 0.5)

	result := router.Classify("please add expense")
	assert.InDelta(t, 0.9526, result.ProbCommand, 1e-4)
	assert.True(t, result.IsCommand)
	assert.Nil(t, result.TopIntent, "no intent model configured")
}

func TestRouterBigrams(t *testing.T) {
	model := &RouterModel{
		Vocabulary: map[string]int{"log it": 0},
		IDF:        []float64{2},
		NgramRange: []int{1, 2},
		Coef:       [][]float64{{1}},
		Intercept:  []float64{0},
	}
	router := NewRouter(model, nil, 0.5)

	result := router.Classify("log it")
	// tf = 1, idf = 2 -> z = 2 -> sigmoid = 0.8808
	assert.InDelta(t, 0.8808, result.ProbCommand, 1e-4)
}

func TestRouterCustomThreshold(t *testing.T) {
	router := NewRouter(commandTestModel(), nil, 0.99)
	result := router.Classify("add expense")
	assert.InDelta(t, 0.9526, result.ProbCommand, 1e-4)
	assert.False(t, result.IsCommand)
}
