package classifier

import (
	"math"
	"strings"

	"github.com/toodl-app/mind/pkg/domain"
)

// TokenClassifier scores utterance tokens against a fixed linear model and
// decodes contiguous BIO runs into named slots.
type TokenClassifier struct {
	model *TokenModel
}

// NewTokenClassifier wraps a loaded model. The model must not be mutated
// afterwards.
func NewTokenClassifier(model *TokenModel) *TokenClassifier {
	return &TokenClassifier{model: model}
}

type featureEntry struct {
	idx   int
	value float64
}

func (c *TokenClassifier) vectorize(features map[string]float64) []featureEntry {
	entries := make([]featureEntry, 0, len(features))
	for name, value := range features {
		// Unknown feature names contribute zero evidence, never an error.
		idx, ok := c.model.Vocabulary[name]
		if !ok || value == 0 {
			continue
		}
		entries = append(entries, featureEntry{idx: idx, value: value})
	}
	return entries
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}
	exps := make([]float64, len(scores))
	var denom float64
	for i, score := range scores {
		exps[i] = math.Exp(score - maxScore)
		denom += exps[i]
	}
	if denom == 0 {
		denom = 1
	}
	for i := range exps {
		exps[i] /= denom
	}
	return exps
}

func (c *TokenClassifier) scoreToken(features []featureEntry) (label string, probability float64) {
	scores := make([]float64, len(c.model.Coef))
	for classIdx, weights := range c.model.Coef {
		sum := c.model.Intercept[classIdx]
		for _, entry := range features {
			sum += weights[entry.idx] * entry.value
		}
		scores[classIdx] = sum
	}
	probs := softmax(scores)
	bestIdx := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[bestIdx] {
			bestIdx = i
		}
	}
	return c.model.Classes[bestIdx], probs[bestIdx]
}

func round(value float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(value*shift) / shift
}

// PredictTokenLabels tokenizes text and emits the arg-max BIO label with its
// softmax probability (rounded to 4 decimals) for every token.
func (c *TokenClassifier) PredictTokenLabels(text string) []domain.TokenPrediction {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	predictions := make([]domain.TokenPrediction, 0, len(tokens))
	for index, token := range tokens {
		features := c.vectorize(BuildFeatures(tokens, index))
		label, probability := c.scoreToken(features)
		predictions = append(predictions, domain.TokenPrediction{
			TokenSpan:   token,
			Label:       label,
			Probability: round(probability, 4),
		})
	}
	return predictions
}

// labelSlot maps a BIO label to the slot it tags, or "" for none.
func labelSlot(label string) domain.SlotName {
	switch {
	case strings.HasSuffix(label, "GROUP"):
		return domain.SlotGroupName
	case strings.HasSuffix(label, "MERCHANT"):
		return domain.SlotMerchant
	case strings.HasSuffix(label, "PAYER"):
		return domain.SlotPaidBy
	case strings.HasSuffix(label, "NOTE"):
		return domain.SlotNote
	default:
		return ""
	}
}

// bioPrefix returns the leading B/I/O marker of a label, tolerating both
// hyphen and underscore separators.
func bioPrefix(label string) string {
	if idx := strings.IndexAny(label, "-_"); idx > 0 {
		return label[:idx]
	}
	return label
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type activeSpan struct {
	slot  domain.SlotName
	start int
	end   int
	probs []float64
}

// ExtractTokenSlots predicts labels for text and decodes them into at most
// one SlotValue per slot name; a later span replaces an earlier one only when
// its mean confidence is strictly higher.
func (c *TokenClassifier) ExtractTokenSlots(text string) domain.TokenSlotExtraction {
	predictions := c.PredictTokenLabels(text)
	slots := make(map[domain.SlotName]domain.SlotValue)

	var active *activeSpan
	flush := func() {
		if active == nil {
			return
		}
		raw := strings.TrimSpace(text[active.start:active.end])
		if raw != "" {
			var sum float64
			for _, p := range active.probs {
				sum += p
			}
			confidence := round(sum/float64(len(active.probs)), 3)
			current, exists := slots[active.slot]
			if !exists || confidence > current.Confidence {
				slots[active.slot] = domain.SlotValue{
					Value:      collapseWhitespace(raw),
					Confidence: confidence,
				}
			}
		}
		active = nil
	}

	for _, prediction := range predictions {
		slot := labelSlot(prediction.Label)
		prefix := bioPrefix(prediction.Label)

		if slot == "" || prefix == "O" {
			flush()
			continue
		}
		if prefix == "B" || active == nil || active.slot != slot {
			flush()
			active = &activeSpan{
				slot:  slot,
				start: prediction.Start,
				end:   prediction.End,
				probs: []float64{prediction.Probability},
			}
			continue
		}
		active.end = prediction.End
		active.probs = append(active.probs, prediction.Probability)
	}
	flush()

	return domain.TokenSlotExtraction{Slots: slots, TokenPredictions: predictions}
}
