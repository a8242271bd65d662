package domain

import (
	"encoding/json"
	"fmt"
)

// Tool identifies which action an Intent requests.
type Tool string

const (
	ToolAddExpense     Tool = "add_expense"
	ToolAddBudgetEntry Tool = "add_budget_entry"
	ToolAddFlowTask    Tool = "add_flow_task"
)

// IntentInput is implemented by the payload of each tool variant.
type IntentInput interface {
	intentInput()
}

// AddExpenseInput records a shared expense. AmountMinor is in integer minor
// currency units (cents).
type AddExpenseInput struct {
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	GroupName   string `json:"groupName"`
	OccurredAt  string `json:"occurredAt,omitempty"`
}

// AddBudgetEntryInput records a spend against a budget document. The inferred
// category is folded into Note; there is intentionally no category field.
type AddBudgetEntryInput struct {
	AmountMinor int64   `json:"amountMinor"`
	BudgetID    string  `json:"budgetId"`
	Merchant    *string `json:"merchant,omitempty"`
	Note        string  `json:"note"`
}

// AddFlowTaskInput schedules a task on the user's flow plan.
type AddFlowTaskInput struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
	ScheduledFor    string `json:"scheduledFor,omitempty"`
	StartsAt        string `json:"startsAt,omitempty"`
}

func (AddExpenseInput) intentInput()     {}
func (AddBudgetEntryInput) intentInput() {}
func (AddFlowTaskInput) intentInput()    {}

// Intent is a tagged union keyed by Tool. Input holds exactly one of the
// tool-specific payload types.
type Intent struct {
	Tool  Tool
	Input IntentInput
}

type intentEnvelope struct {
	Tool  Tool            `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// MarshalJSON encodes the intent as {"tool": ..., "input": {...}}.
func (i Intent) MarshalJSON() ([]byte, error) {
	input, err := json.Marshal(i.Input)
	if err != nil {
		return nil, err
	}
	return json.Marshal(intentEnvelope{Tool: i.Tool, Input: input})
}

// UnmarshalJSON decodes the payload into the shape named by the tool tag.
func (i *Intent) UnmarshalJSON(data []byte) error {
	var env intentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	i.Tool = env.Tool
	switch env.Tool {
	case ToolAddExpense:
		var input AddExpenseInput
		if err := json.Unmarshal(env.Input, &input); err != nil {
			return err
		}
		i.Input = input
	case ToolAddBudgetEntry:
		var input AddBudgetEntryInput
		if err := json.Unmarshal(env.Input, &input); err != nil {
			return err
		}
		i.Input = input
	case ToolAddFlowTask:
		var input AddFlowTaskInput
		if err := json.Unmarshal(env.Input, &input); err != nil {
			return err
		}
		i.Input = input
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTool, env.Tool)
	}
	return nil
}
