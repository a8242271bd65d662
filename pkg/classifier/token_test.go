package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toodl-app/mind/pkg/domain"
)

// groupTestModel tags a word followed by "crew" as B-GROUP and the keyword
// itself as I-GROUP, with hand-checkable softmax outputs.
func groupTestModel() *TokenModel {
	return &TokenModel{
		Vocabulary: map[string]int{
			"next_token=crew": 0,
			"group_keyword":   1,
			"bias":            2,
			"token=sunset":    3,
		},
		Coef: [][]float64{
			{0, 0, 1, 0}, // O
			{3, 0, 0, 1}, // B-GROUP
			{0, 3, 0, 0}, // I-GROUP
		},
		Intercept: []float64{0, 0, 0},
		Classes:   []string{"O", "B-GROUP", "I-GROUP"},
	}
}

func TestPredictTokenLabels(t *testing.T) {
	clf := NewTokenClassifier(groupTestModel())

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, clf.PredictTokenLabels(""))
	})

	t.Run("labels and probabilities", func(t *testing.T) {
		predictions := clf.PredictTokenLabels("dinner with sunset crew")
		require.Len(t, predictions, 4)

		// bias only: softmax([1,0,0]) -> e/(e+2) = 0.5761
		assert.Equal(t, "O", predictions[0].Label)
		assert.InDelta(t, 0.5761, predictions[0].Probability, 1e-4)

		// token=sunset + next_token=crew + bias: scores [1,4,0] -> 0.9362
		assert.Equal(t, "B-GROUP", predictions[2].Label)
		assert.InDelta(t, 0.9362, predictions[2].Probability, 1e-4)

		assert.Equal(t, "I-GROUP", predictions[3].Label)
	})

	t.Run("unknown features contribute zero evidence", func(t *testing.T) {
		predictions := clf.PredictTokenLabels("zzz qqq")
		for _, prediction := range predictions {
			assert.Equal(t, "O", prediction.Label)
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first := clf.PredictTokenLabels("dinner with sunset crew")
		second := clf.PredictTokenLabels("dinner with sunset crew")
		assert.Equal(t, first, second)
	})
}

func TestExtractTokenSlots(t *testing.T) {
	clf := NewTokenClassifier(groupTestModel())

	t.Run("contiguous run decodes to one slot", func(t *testing.T) {
		extraction := clf.ExtractTokenSlots("dinner with sunset crew")
		require.Contains(t, extraction.Slots, domain.SlotGroupName)

		slot := extraction.Slots[domain.SlotGroupName]
		assert.Equal(t, "sunset crew", slot.Value)
		// mean of 0.9362 and 0.8438 is 0.89
		assert.InDelta(t, 0.89, slot.Confidence, 1e-3)
		assert.Len(t, extraction.TokenPredictions, 4)
	})

	t.Run("no slots in plain text", func(t *testing.T) {
		extraction := clf.ExtractTokenSlots("just some words")
		assert.Empty(t, extraction.Slots)
	})

	t.Run("higher-confidence span wins", func(t *testing.T) {
		// "a crew" scores lower on its B token than "sunset crew" does;
		// only the stronger span must survive.
		extraction := clf.ExtractTokenSlots("a crew then sunset crew")
		require.Contains(t, extraction.Slots, domain.SlotGroupName)
		assert.Equal(t, "sunset crew", extraction.Slots[domain.SlotGroupName].Value)
		assert.Len(t, extraction.Slots, 1)
	})

	t.Run("empty text yields empty extraction", func(t *testing.T) {
		extraction := clf.ExtractTokenSlots("")
		assert.Empty(t, extraction.Slots)
		assert.Empty(t, extraction.TokenPredictions)
	})
}

func TestLabelSlot(t *testing.T) {
	assert.Equal(t, domain.SlotGroupName, labelSlot("B-GROUP"))
	assert.Equal(t, domain.SlotMerchant, labelSlot("I-MERCHANT"))
	assert.Equal(t, domain.SlotPaidBy, labelSlot("B-PAYER"))
	assert.Equal(t, domain.SlotNote, labelSlot("I-NOTE"))
	assert.Equal(t, domain.SlotName(""), labelSlot("O"))
}

func TestBioPrefix(t *testing.T) {
	assert.Equal(t, "B", bioPrefix("B-GROUP"))
	assert.Equal(t, "I", bioPrefix("I_NOTE"))
	assert.Equal(t, "O", bioPrefix("O"))
}
