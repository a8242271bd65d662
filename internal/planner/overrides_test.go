package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toodl-app/mind/pkg/domain"
)

func TestDecodeHints(t *testing.T) {
	t.Run("empty map", func(t *testing.T) {
		hints, err := DecodeHints(nil)
		require.NoError(t, err)
		assert.False(t, hints.Debug)
		assert.Nil(t, hints.IntentOverride)
	})

	t.Run("populated", func(t *testing.T) {
		hints, err := DecodeHints(map[string]any{
			"debug":             true,
			"intentMessage":     "ready",
			"editableOverrides": map[string]any{"amount": "$12"},
			"unknownKey":        42,
		})
		require.NoError(t, err)
		assert.True(t, hints.Debug)
		assert.Equal(t, "ready", hints.IntentMessage)
		assert.Equal(t, "$12", hints.EditableOverrides["amount"])
	})
}

func TestOverrideIntent(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		intent, err := Hints{}.OverrideIntent()
		require.NoError(t, err)
		assert.Nil(t, intent)
	})

	t.Run("budget entry", func(t *testing.T) {
		hints := Hints{IntentOverride: map[string]any{
			"tool": "add_budget_entry",
			"input": map[string]any{
				"amountMinor": 2500,
				"budgetId":    "b1",
				"note":        "Coffee",
			},
		}}
		intent, err := hints.OverrideIntent()
		require.NoError(t, err)
		require.NotNil(t, intent)
		assert.Equal(t, domain.ToolAddBudgetEntry, intent.Tool)
		input := intent.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, int64(2500), input.AmountMinor)
	})

	t.Run("unknown tool", func(t *testing.T) {
		hints := Hints{IntentOverride: map[string]any{
			"tool":  "summon_dragon",
			"input": map[string]any{},
		}}
		_, err := hints.OverrideIntent()
		assert.ErrorIs(t, err, domain.ErrUnknownTool)
	})
}

func overrideBudgetIntent() domain.Intent {
	return domain.Intent{
		Tool: domain.ToolAddBudgetEntry,
		Input: domain.AddBudgetEntryInput{
			AmountMinor: 3000,
			BudgetID:    "b1",
			Note:        "Groceries",
		},
	}
}

func overrideSnapshot() *domain.MindExperienceSnapshot {
	return &domain.MindExperienceSnapshot{
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

func TestApplyOverrides(t *testing.T) {
	t.Run("amount", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"amount": "$48.75"}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, int64(4875), input.AmountMinor)
	})

	t.Run("unparseable amount keeps original", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"amount": "a lot"}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, int64(3000), input.AmountMinor)
	})

	t.Run("budget synonym", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"budget": "vacation"}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, "b2", input.BudgetID)
	})

	t.Run("unmatched budget keeps original", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"budget": "quantum"}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, "b1", input.BudgetID)
	})

	t.Run("description with merchant", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"description": "Dining at Whole Foods"}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, "Dining at Whole Foods", input.Note)
		require.NotNil(t, input.Merchant)
		assert.Equal(t, "Whole Foods", *input.Merchant)
	})

	t.Run("description without merchant", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"description": "Snacks"}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, "Snacks", input.Note)
		assert.Nil(t, input.Merchant)
	})

	t.Run("blank description is ignored", func(t *testing.T) {
		result := ApplyOverrides(overrideBudgetIntent(),
			map[string]string{"description": "   "}, overrideSnapshot())
		input := result.Input.(domain.AddBudgetEntryInput)
		assert.Equal(t, "Groceries", input.Note)
	})

	t.Run("non-budget intent passes through", func(t *testing.T) {
		intent := domain.Intent{
			Tool: domain.ToolAddExpense,
			Input: domain.AddExpenseInput{
				AmountMinor: 2000,
				Currency:    "USD",
				Description: "Gas",
				GroupName:   "40th Birthday",
			},
		}
		result := ApplyOverrides(intent,
			map[string]string{"amount": "$99.00"}, overrideSnapshot())
		assert.Equal(t, intent, result)
	})

	t.Run("no overrides", func(t *testing.T) {
		intent := overrideBudgetIntent()
		assert.Equal(t, intent, ApplyOverrides(intent, nil, overrideSnapshot()))
	})
}

func TestParseMajorAmount(t *testing.T) {
	cases := []struct {
		raw   string
		major float64
		ok    bool
	}{
		{"$48.75", 48.75, true},
		{"48,75 EUR", 48.75, true},
		{"120", 120, true},
		{"-12.50", -12.5, true},
		{"a lot", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		major, ok := parseMajorAmount(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.InDelta(t, tc.major, major, 1e-9, tc.raw)
		}
	}
}

func TestMerchantFromDescription(t *testing.T) {
	assert.Equal(t, "Whole Foods", merchantFromDescription("Dining at Whole Foods"))
	assert.Equal(t, "Whole Foods at Night", merchantFromDescription("Dining at Whole Foods at Night"))
	assert.Empty(t, merchantFromDescription("Groceries"))
	assert.Empty(t, merchantFromDescription("at the start"))
}
