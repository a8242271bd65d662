package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toodl-app/mind/pkg/domain"
)

func expenseSnapshot() *domain.MindExperienceSnapshot {
	return &domain.MindExperienceSnapshot{
		Expenses: domain.ExpenseContext{
			Groups: []domain.ExpenseGroup{
				{ID: "g1", Name: "40th Birthday", Currency: "USD"},
				{ID: "g2", Name: "Ski Trip 2025", Currency: "USD"},
				{ID: "g3", Name: "Team Lunch", Currency: "USD"},
				{ID: "g4", Name: "Supper Club", Currency: "USD"},
				{ID: "g5", Name: "Road Trip", Currency: "USD"},
				{ID: "g6", Name: "Wedding Crew", Currency: "USD"},
				{ID: "g7", Name: "Lisbon Flat", Currency: "EUR"},
				{ID: "g8", Name: "Whistler Cabin", Currency: "CAD"},
			},
		},
	}
}

func TestExpenseRuleParse(t *testing.T) {
	rule := NewExpenseRule(nil)
	snapshot := expenseSnapshot()

	cases := []struct {
		name        string
		utterance   string
		amountMinor int64
		currency    string
		description string
		group       string
		occurredAt  string
		confidence  float64
	}{
		{
			name:        "canonical add expense",
			utterance:   "Add an expense for $20.00 gas in the 40th birthday group.",
			amountMinor: 2000,
			currency:    "USD",
			description: "Gas",
			group:       "40th Birthday",
			confidence:  0.85,
		},
		{
			name:        "bucks with category phrase",
			utterance:   "Record 15.50 bucks for snacks under the Ski Trip 2025.",
			amountMinor: 1550,
			currency:    "USD",
			description: "Snacks",
			group:       "Ski Trip 2025",
			confidence:  0.85,
		},
		{
			name:        "multi word category",
			utterance:   "Track 9.25 bucks on breakfast burritos in Supper Club.",
			amountMinor: 925,
			currency:    "USD",
			description: "Breakfast Burritos",
			group:       "Supper Club",
			confidence:  0.85,
		},
		{
			name:        "fuel synonym with relative date",
			utterance:   "Add $34.00 fuel expense to the Team Lunch tonight.",
			amountMinor: 3400,
			currency:    "USD",
			description: "Gas",
			group:       "Team Lunch",
			occurredAt:  "tonight",
			confidence:  0.85,
		},
		{
			name:        "rupee symbol money first",
			utterance:   "₹470 petrol in the Ski Trip 2025, log it.",
			amountMinor: 47000,
			currency:    "INR",
			description: "Gas",
			group:       "Ski Trip 2025",
			confidence:  0.85,
		},
		{
			name:        "euros word",
			utterance:   "Track 45 euros on coffee for the Supper Club.",
			amountMinor: 4500,
			currency:    "EUR",
			description: "Coffee",
			group:       "Supper Club",
			confidence:  0.85,
		},
		{
			name:        "pound symbol",
			utterance:   "Record £28.50 spent on snacks in our Wedding Crew.",
			amountMinor: 2850,
			currency:    "GBP",
			description: "Snacks",
			group:       "Wedding Crew",
			confidence:  0.85,
		},
		{
			name:        "cad word with tomorrow",
			utterance:   "Add 120 cad for lodging to the Road Trip tomorrow.",
			amountMinor: 12000,
			currency:    "CAD",
			description: "Lodging",
			group:       "Road Trip",
			occurredAt:  "tomorrow",
			confidence:  0.85,
		},
		{
			name:        "dollar sign stays USD in a euro group",
			utterance:   "Add $25.00 expense for dinner in the Lisbon Flat group.",
			amountMinor: 2500,
			currency:    "USD",
			description: "Dinner",
			group:       "Lisbon Flat",
			confidence:  0.85,
		},
		{
			name:        "dollar sign adopts a dollar group currency",
			utterance:   "Log a $40.00 expense for snacks in the Whistler Cabin group.",
			amountMinor: 4000,
			currency:    "CAD",
			description: "Snacks",
			group:       "Whistler Cabin",
			confidence:  0.85,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := rule.Parse(tc.utterance, snapshot)
			require.NotNil(t, result)

			assert.Equal(t, domain.ToolAddExpense, result.Intent.Tool)
			input, ok := result.Intent.Input.(domain.AddExpenseInput)
			require.True(t, ok)

			assert.Equal(t, tc.amountMinor, input.AmountMinor)
			assert.Equal(t, tc.currency, input.Currency)
			assert.Equal(t, tc.description, input.Description)
			assert.Equal(t, tc.group, input.GroupName)
			assert.Equal(t, tc.occurredAt, input.OccurredAt)
			assert.InDelta(t, tc.confidence, result.Confidence, 1e-9)

			require.NotNil(t, result.EditableMessage)
			assert.NoError(t, result.EditableMessage.Validate())
			groupField, ok := result.EditableMessage.FieldValue("group")
			require.True(t, ok)
			assert.Equal(t, tc.group, groupField)
		})
	}
}

func TestExpenseRuleDateField(t *testing.T) {
	rule := NewExpenseRule(nil)
	result := rule.Parse("Add $34.00 fuel expense to the Team Lunch tonight.", expenseSnapshot())
	require.NotNil(t, result)
	require.NotNil(t, result.EditableMessage)

	assert.Contains(t, result.EditableMessage.Template, "{{date}}")
	date, ok := result.EditableMessage.FieldValue("date")
	require.True(t, ok)
	assert.Equal(t, "tonight", date)
}

func TestExpenseRuleISODate(t *testing.T) {
	rule := NewExpenseRule(nil)
	result := rule.Parse("Record $18.00 spent on Uber rides for the Road Trip on 2024-12-05.", expenseSnapshot())
	require.NotNil(t, result)

	input := result.Intent.Input.(domain.AddExpenseInput)
	assert.Equal(t, "2024-12-05", input.OccurredAt)
	assert.Equal(t, "Ride Share", input.Description)
}

func TestExpenseRuleAbstains(t *testing.T) {
	rule := NewExpenseRule(nil)
	snapshot := expenseSnapshot()

	cases := []struct {
		name      string
		utterance string
	}{
		{"chatter", "Remind me to call mom tomorrow"},
		{"scheduling request", "Schedule yoga for 45 minutes"},
		{"question", "How much did we spend last month?"},
		{"no amount", "Add expense in ski trip group"},
		{"spelled out amount", "Twenty dollars gas in the birthday group"},
		{"conflicting amounts", "Add an expense for $20 or $30 gas in the 40th birthday group."},
		{"unknown group", "Add $20.00 expense for gas in the Mars Colony group."},
		{"empty", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, rule.Parse(tc.utterance, snapshot))
		})
	}
}

func TestResolveGroup(t *testing.T) {
	groups := expenseSnapshot().Expenses.Groups

	t.Run("direct phrase match", func(t *testing.T) {
		group := resolveGroup("record gas in the ski trip 2025 crew", "", groups)
		require.NotNil(t, group)
		assert.Equal(t, "Ski Trip 2025", group.Name)
	})

	t.Run("slot hint match", func(t *testing.T) {
		group := resolveGroup("add something somewhere", "wedding crew", groups)
		require.NotNil(t, group)
		assert.Equal(t, "Wedding Crew", group.Name)
	})

	t.Run("abbreviation via synonym replacement", func(t *testing.T) {
		group := resolveGroup("add gas expense to the 40th bday group", "", groups)
		require.NotNil(t, group)
		assert.Equal(t, "40th Birthday", group.Name)
	})

	t.Run("fuzzy match within threshold", func(t *testing.T) {
		group := resolveGroup("add expense to the Sky Trip 2025 group", "", groups)
		require.NotNil(t, group)
		assert.Equal(t, "Ski Trip 2025", group.Name)
	})

	t.Run("no candidate", func(t *testing.T) {
		assert.Nil(t, resolveGroup("hello there", "", groups))
	})

	t.Run("candidate beyond threshold", func(t *testing.T) {
		assert.Nil(t, resolveGroup("add expense to the Mars Colony group", "", groups))
	})
}
