package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/toodl-app/mind/internal/rules"
	"github.com/toodl-app/mind/pkg/domain"
)

// Hints are the loosely typed contextHints the orchestrator understands.
// Unknown keys are ignored.
type Hints struct {
	Debug             bool              `mapstructure:"debug"`
	IntentOverride    map[string]any    `mapstructure:"intentOverride"`
	EditableOverrides map[string]string `mapstructure:"editableOverrides"`
	IntentMessage     string            `mapstructure:"intentMessage"`
}

// DecodeHints reads the hints map coming off the wire. Missing hints decode
// to the zero value.
func DecodeHints(raw map[string]any) (Hints, error) {
	var hints Hints
	if len(raw) == 0 {
		return hints, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &hints,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Hints{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Hints{}, fmt.Errorf("decode context hints: %w", err)
	}
	return hints, nil
}

// OverrideIntent decodes the intentOverride hint into a typed Intent, or
// returns nil when the hint is absent.
func (h Hints) OverrideIntent() (*domain.Intent, error) {
	if h.IntentOverride == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(h.IntentOverride)
	if err != nil {
		return nil, err
	}
	var intent domain.Intent
	if err := json.Unmarshal(encoded, &intent); err != nil {
		return nil, fmt.Errorf("decode intent override: %w", err)
	}
	return &intent, nil
}

var (
	amountStripPattern = regexp.MustCompile(`[^\d.,-]`)
	amountValuePattern = regexp.MustCompile(`-?\d+(?:[.,]\d{1,2})?`)
	atSplitPattern     = regexp.MustCompile(`(?i)\sat\s`)
)

// ApplyOverrides folds user edits of the confirmation fields back into an
// intent before execution. Only budget entries carry re-resolvable fields;
// every other intent passes through unchanged, as do fields that fail to
// re-resolve.
func ApplyOverrides(intent domain.Intent, overrides map[string]string, snapshot *domain.MindExperienceSnapshot) domain.Intent {
	if len(overrides) == 0 {
		return intent
	}
	input, ok := intent.Input.(domain.AddBudgetEntryInput)
	if !ok {
		return intent
	}

	if raw, present := overrides["amount"]; present {
		if major, valid := parseMajorAmount(raw); valid {
			input.AmountMinor = int64(math.Round(major * 100))
		}
	}

	if raw, present := overrides["budget"]; present {
		if doc := rules.MatchBudgetTitle(raw, snapshot.Budget); doc != nil {
			input.BudgetID = doc.ID
		}
	}

	if raw, present := overrides["description"]; present {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			input.Note = trimmed
			if merchant := merchantFromDescription(trimmed); merchant != "" {
				input.Merchant = &merchant
			}
		}
	}

	intent.Input = input
	return intent
}

// parseMajorAmount pulls the first decimal number out of an edited amount
// string such as "$48.75" or "48,75 EUR".
func parseMajorAmount(value string) (float64, bool) {
	stripped := amountStripPattern.ReplaceAllString(value, "")
	match := amountValuePattern.FindString(stripped)
	if match == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// merchantFromDescription returns the text after the first " at " separator,
// mirroring how the budget rule folds "category at merchant" into one note.
func merchantFromDescription(description string) string {
	parts := atSplitPattern.Split(description, -1)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.Join(parts[1:], " at "))
}
