package domain

// TokenSpan is a substring of the original utterance with its rune offsets.
// Spans are produced in increasing, non-overlapping order and together cover
// every non-whitespace run of the input.
type TokenSpan struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// TokenPrediction extends a TokenSpan with the classifier's decision for that
// position. Label is a BIO tag ("B-<SLOT>", "I-<SLOT>", or "O") and
// Probability is the softmax mass assigned to it, rounded to 4 decimals.
type TokenPrediction struct {
	TokenSpan
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// SlotName identifies the semantic role of a decoded span.
type SlotName string

const (
	SlotGroupName SlotName = "groupName"
	SlotMerchant  SlotName = "merchant"
	SlotPaidBy    SlotName = "paidByHint"
	SlotNote      SlotName = "note"
)

// SlotValue is the decoded text of one contiguous slot span and the mean
// per-token probability across it.
type SlotValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// TokenSlotExtraction is the full decoding output for one utterance. At most
// one SlotValue per slot name is kept; when multiple spans compete for the
// same slot only the highest-confidence one survives.
type TokenSlotExtraction struct {
	Slots            map[SlotName]SlotValue `json:"slots"`
	TokenPredictions []TokenPrediction      `json:"tokenPredictions"`
}
