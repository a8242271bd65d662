package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toodl-app/mind/pkg/classifier"
	"github.com/toodl-app/mind/pkg/domain"
)

func plannerSnapshot() domain.MindExperienceSnapshot {
	return domain.MindExperienceSnapshot{
		Expenses: domain.ExpenseContext{
			Groups: []domain.ExpenseGroup{
				{ID: "g1", Name: "40th Birthday", Currency: "USD"},
				{ID: "g2", Name: "Ski Trip 2025", Currency: "USD"},
			},
		},
		Budget: domain.BudgetContext{
			ActiveBudgetID: "b1",
			Currency:       "USD",
			Documents: []domain.BudgetDocument{
				{ID: "b1", Title: "Home"},
				{ID: "b2", Title: "Travel"},
				{ID: "b3", Title: "Family"},
			},
		},
	}
}

func testRouter() *classifier.Router {
	command := &classifier.RouterModel{
		Vocabulary: map[string]int{"add": 0, "expense": 1, "schedule": 2},
		IDF:        []float64{1, 1, 1},
		NgramRange: []int{1, 1},
		Coef:       [][]float64{{2, 2, 2}},
		Intercept:  []float64{-1},
		Classes:    []string{"not_command", "command"},
	}
	intent := &classifier.RouterModel{
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
	return classifier.NewRouter(command, intent, 0)
}

func TestPlannerPlanExpense(t *testing.T) {
	p := New(nil, nil)
	response := p.Plan(&domain.MindRequest{
		Utterance: "Add an expense for $20.00 gas in the 40th birthday group.",
		Snapshot:  plannerSnapshot(),
	})

	require.Equal(t, domain.StatusOK, response.Status)
	require.NotNil(t, response.Result)
	assert.Equal(t, domain.ToolAddExpense, response.Result.Intent.Tool)
	assert.Empty(t, response.Error)
	assert.Nil(t, response.Debug, "debug traces are opt-in")

	input := response.Result.Intent.Input.(domain.AddExpenseInput)
	assert.Equal(t, int64(2000), input.AmountMinor)
	assert.Equal(t, "40th Birthday", input.GroupName)
}

func TestPlannerPlanFlowTask(t *testing.T) {
	base := time.Date(2025, time.February, 15, 12, 0, 0, 0, time.UTC)
	p := New(nil, nil, WithClock(func() time.Time { return base }))
	response := p.Plan(&domain.MindRequest{
		Utterance: "Schedule yoga session tomorrow at 6am for 45 minutes.",
		Snapshot:  plannerSnapshot(),
	})

	require.Equal(t, domain.StatusOK, response.Status)
	require.NotNil(t, response.Result)
	assert.Equal(t, domain.ToolAddFlowTask, response.Result.Intent.Tool)

	input := response.Result.Intent.Input.(domain.AddFlowTaskInput)
	assert.Equal(t, "Yoga Session", input.Title)
	assert.Equal(t, "6:00am", input.StartsAt)
}

func TestPlannerMiss(t *testing.T) {
	t.Run("chatter with router", func(t *testing.T) {
		p := New(testRouter(), nil)
		response := p.Plan(&domain.MindRequest{
			Utterance: "Remind me to call mom tomorrow",
			Snapshot:  plannerSnapshot(),
		})
		require.Equal(t, domain.StatusFailed, response.Status)
		assert.Nil(t, response.Result)
		assert.Equal(t, notCommandMessage, response.Error)
	})

	t.Run("chatter without router", func(t *testing.T) {
		p := New(nil, nil)
		response := p.Plan(&domain.MindRequest{
			Utterance: "Remind me to call mom tomorrow",
			Snapshot:  plannerSnapshot(),
		})
		require.Equal(t, domain.StatusFailed, response.Status)
		assert.Equal(t, noRuleMessage, response.Error)
	})

	t.Run("empty utterance", func(t *testing.T) {
		p := New(testRouter(), nil)
		response := p.Plan(&domain.MindRequest{Snapshot: plannerSnapshot()})
		assert.Equal(t, domain.StatusFailed, response.Status)
	})
}

func TestPlannerDebugTraces(t *testing.T) {
	p := New(testRouter(), nil)
	response := p.Plan(&domain.MindRequest{
		Utterance:    "Add an expense for $20.00 gas in the 40th birthday group.",
		Snapshot:     plannerSnapshot(),
		ContextHints: map[string]any{"debug": true},
	})

	require.Equal(t, domain.StatusOK, response.Status)
	require.NotEmpty(t, response.Debug)

	first := response.Debug[0]
	assert.Equal(t, "planner", first.Phase)
	assert.Equal(t, "Linear classifier routing result", first.Description)
	data := first.Data.(map[string]any)
	assert.Equal(t, true, data["isCommand"])
	assert.Equal(t, "add_expense", data["topIntent"])
	assert.InDelta(t, 0.6, data["threshold"].(float64), 1e-9)

	last := response.Debug[len(response.Debug)-1]
	assert.Equal(t, "Selected highest-confidence rule result", last.Description)
}

func TestPlannerRuleOrdering(t *testing.T) {
	p := New(nil, nil)

	t.Run("no prediction keeps priority order", func(t *testing.T) {
		ordered := p.orderedRules(nil)
		require.Len(t, ordered, 3)
		assert.Equal(t, domain.ToolAddExpense, ordered[0].Tool())
	})

	t.Run("predicted rule moves first", func(t *testing.T) {
		ordered := p.orderedRules(&classifier.IntentPrediction{Label: "add_flow_task"})
		require.Len(t, ordered, 3)
		assert.Equal(t, domain.ToolAddFlowTask, ordered[0].Tool())
		assert.Equal(t, domain.ToolAddExpense, ordered[1].Tool())
	})

	t.Run("unknown prediction is ignored", func(t *testing.T) {
		ordered := p.orderedRules(&classifier.IntentPrediction{Label: "summarize_state"})
		assert.Equal(t, domain.ToolAddExpense, ordered[0].Tool())
	})
}

func TestBetterResult(t *testing.T) {
	high := &domain.RuleResult{Confidence: 0.85}
	low := &domain.RuleResult{Confidence: 0.75}

	assert.True(t, betterResult(high, domain.ToolAddFlowTask, low, domain.ToolAddExpense))
	assert.False(t, betterResult(low, domain.ToolAddExpense, high, domain.ToolAddFlowTask))

	// Equal confidence falls back to the fixed priority order.
	tied := &domain.RuleResult{Confidence: 0.85}
	assert.True(t, betterResult(tied, domain.ToolAddExpense, high, domain.ToolAddBudgetEntry))
	assert.False(t, betterResult(tied, domain.ToolAddFlowTask, high, domain.ToolAddBudgetEntry))
}

func TestPlannerIntentOverride(t *testing.T) {
	p := New(nil, nil)
	response := p.Plan(&domain.MindRequest{
		Utterance: "whatever the user typed before editing",
		Snapshot:  plannerSnapshot(),
		ContextHints: map[string]any{
			"intentOverride": map[string]any{
				"tool": "add_budget_entry",
				"input": map[string]any{
					"amountMinor": 3000,
					"budgetId":    "b1",
					"note":        "Groceries",
				},
			},
			"editableOverrides": map[string]any{
				"amount":      "$48.75",
				"budget":      "household",
				"description": "Dining at Whole Foods",
			},
			"intentMessage": "Updated entry, ready to go.",
		},
	})

	require.Equal(t, domain.StatusOK, response.Status)
	require.NotNil(t, response.Result)
	assert.Equal(t, "Updated entry, ready to go.", response.Result.Message)
	assert.InDelta(t, 0.9, response.Result.Confidence, 1e-9)

	input := response.Result.Intent.Input.(domain.AddBudgetEntryInput)
	assert.Equal(t, int64(4875), input.AmountMinor)
	assert.Equal(t, "b3", input.BudgetID, "household resolves to Family")
	assert.Equal(t, "Dining at Whole Foods", input.Note)
	require.NotNil(t, input.Merchant)
	assert.Equal(t, "Whole Foods", *input.Merchant)
}

func TestPlannerMalformedOverrideFallsThrough(t *testing.T) {
	p := New(nil, nil)
	response := p.Plan(&domain.MindRequest{
		Utterance: "Add an expense for $20.00 gas in the 40th birthday group.",
		Snapshot:  plannerSnapshot(),
		ContextHints: map[string]any{
			"intentOverride": map[string]any{"tool": "summon_dragon", "input": map[string]any{}},
		},
	})

	// The bad override is dropped and normal interpretation proceeds.
	require.Equal(t, domain.StatusOK, response.Status)
	assert.Equal(t, domain.ToolAddExpense, response.Result.Intent.Tool)
}
