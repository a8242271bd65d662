package domain

// RuleResult is the output of one matched intent rule: the structured intent,
// a confidence in [0,1], a rendered confirmation message and its editable
// form. Results are constructed fresh per call and never mutated.
type RuleResult struct {
	Intent          Intent           `json:"intent"`
	Confidence      float64          `json:"confidence"`
	Message         string           `json:"message"`
	EditableMessage *EditableMessage `json:"editableMessage,omitempty"`
}

// MindRequest is the orchestrator boundary input.
type MindRequest struct {
	Utterance    string                 `json:"utterance"`
	Snapshot     MindExperienceSnapshot `json:"snapshot"`
	ContextHints map[string]any         `json:"contextHints,omitempty"`
}

// Response status values. A failed status is an expected outcome of
// ambiguous or unsupported input, not an exception.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// DebugTrace is one interpretation phase record, attached when the request
// asks for debugging.
type DebugTrace struct {
	Phase       string `json:"phase"`
	Description string `json:"description"`
	Data        any    `json:"data,omitempty"`
}

// MindResponse is the orchestrator boundary output.
type MindResponse struct {
	Status string       `json:"status"`
	Result *RuleResult  `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
	Debug  []DebugTrace `json:"debug,omitempty"`
}
