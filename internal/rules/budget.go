package rules

import (
	"math"
	"regexp"
	"strings"

	"github.com/toodl-app/mind/pkg/domain"
)

var (
	groupKeywordVeto = regexp.MustCompile(`(?i)\b(group|trip|crew|team|settle|split|owe|tab|reimburse|pay back)\b`)
	addBudgetPrefix  = regexp.MustCompile(`(?i)\b(add|log|record|track|put|move)\b.{0,40}\b(budget|category|envelope|spend|spent|expense|allocate)\b`)
	budgetVerb       = regexp.MustCompile(`(?i)\b(add|allocate|put|move|log|record|track)\b`)

	budgetCategoryPhrase = regexp.MustCompile(`(?i)\b(?:to|for|on|towards?)\s+(?P<category>[a-z][a-z0-9&'/\-\s]{1,40}?)(?:\s+(?:in|into|to|for|with|at|between|among|under)\b|[,.!?]|$)`)
	budgetCategorySkip   = regexp.MustCompile(`(?i)\b(budget|plan)\b`)
	budgetFallbackSkip   = regexp.MustCompile(`(?i)^(in|into|to|for|at)$`)

	merchantPattern = regexp.MustCompile(`(?i)\bat\s+(?P<merchant>[a-z0-9&'()\-.\s]{2,40}?)(?:\s+(?:to|for|in|into|under|with)\b|[,.!?]|$)`)
)

// budgetCategoryStopwords extends the shared filler words with connectors
// that leak into lazy regex captures.
var budgetCategoryStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "some": true, "my": true, "our": true,
	"in": true, "into": true, "to": true, "for": true, "on": true,
	"towards": true, "toward": true, "at": true, "with": true,
	"between": true, "among": true, "budget": true,
}

// budgetCategorySynonyms folds spending phrases and well-known merchants onto
// canonical category names. Identity entries pin multi-word captures to their
// head word.
var budgetCategorySynonyms = map[string]string{
	"groceries":   "groceries",
	"grocery":     "groceries",
	"food":        "food",
	"dining":      "dining",
	"restaurant":  "dining",
	"restaurants": "dining",
	"eating":      "dining",
	"lunch":       "lunch",
	"dinner":      "dinner",
	"breakfast":   "breakfast",
	"snacks":      "snacks",
	"snack":       "snacks",
	"gas":         "gas",
	"gasoline":    "gas",
	"petrol":      "gas",
	"fuel":        "gas",
	"utilities":   "utilities",
	"power":       "utilities",
	"electric":    "utilities",
	"electricity": "utilities",
	"water":       "utilities",
	"rent":        "rent",
	"mortgage":    "mortgage",
	"insurance":   "insurance",
	"travel":      "travel",
	"vacation":    "travel",
	"holiday":     "travel",
	"supplies":    "supplies",
	"hardware":    "hardware",
	"safeway":     "groceries",
	"trader":      "groceries",
	"walmart":     "groceries",
	"target":      "groceries",
	"tech":        "tech",
	"gear":        "tech",
}

// BudgetRule parses utterances like "Log $48.75 on dining in the home budget
// at Whole Foods" into an add_budget_entry intent.
type BudgetRule struct{}

// NewBudgetRule builds the rule.
func NewBudgetRule() *BudgetRule { return &BudgetRule{} }

// Tool reports the intent this rule produces.
func (r *BudgetRule) Tool() domain.Tool { return domain.ToolAddBudgetEntry }

func budgetMatchesIntent(utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" {
		return false
	}
	head := normalized
	if len(head) > 80 {
		head = head[:80]
	}
	if addBudgetPrefix.MatchString(head) {
		return true
	}
	if moneyFirst.MatchString(normalized) {
		return true
	}
	if strings.Contains(normalized, "budget") || strings.Contains(normalized, "envelope") {
		return true
	}
	return budgetVerb.MatchString(normalized)
}

func normalizeBudgetCategory(raw string) string {
	trimmed := normalizeWhitespace(nonCategoryChars.ReplaceAllString(strings.ToLower(raw), " "))
	if trimmed == "" {
		return ""
	}
	var tokens []string
	for _, token := range strings.Fields(trimmed) {
		if !budgetCategoryStopwords[token] {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	for _, token := range tokens {
		if mapped := budgetCategorySynonyms[token]; mapped != "" {
			return mapped
		}
	}
	return strings.Join(tokens, " ")
}

func extractBudgetCategory(utterance string, amount *amountMatch) string {
	var candidate string
	for _, m := range budgetCategoryPhrase.FindAllStringSubmatch(utterance, -1) {
		raw := m[1]
		if raw == "" || budgetCategorySkip.MatchString(raw) {
			continue
		}
		candidate = strings.TrimSpace(raw)
		break
	}

	if candidate == "" && amount != nil {
		afterAmount := strings.TrimSpace(utterance[amount.End:])
		if words := strings.Fields(afterAmount); len(words) > 0 {
			if first := words[0]; !budgetFallbackSkip.MatchString(first) {
				candidate = first
			}
		}
	}

	return normalizeBudgetCategory(candidate)
}

func extractMerchant(utterance string) string {
	m := merchantPattern.FindStringSubmatch(utterance)
	if m == nil {
		return ""
	}
	cleaned := strings.TrimSpace(m[1])
	if cleaned == "" {
		return ""
	}
	return titleCase(cleaned)
}

func buildBudgetDescription(category, merchant string) string {
	switch {
	case category != "" && merchant != "":
		return titleCase(category) + " at " + merchant
	case category != "":
		return titleCase(category)
	case merchant != "":
		return merchant
	default:
		return "This entry"
	}
}

// Parse evaluates the utterance and returns an add_budget_entry result, or
// nil when it reads as a group-expense request, lacks an unambiguous amount,
// or no budget document can be resolved.
func (r *BudgetRule) Parse(utterance string, snapshot *domain.MindExperienceSnapshot) *domain.RuleResult {
	if strings.TrimSpace(utterance) == "" || snapshot == nil {
		return nil
	}
	if groupKeywordVeto.MatchString(utterance) {
		return nil
	}
	if !budgetMatchesIntent(utterance) {
		return nil
	}
	amount := extractAmount(utterance)
	if amount == nil || amount.Minor <= 0 {
		return nil
	}

	category := extractBudgetCategory(utterance, amount)
	merchant := extractMerchant(utterance)
	budget := resolveBudget(utterance, snapshot.Budget)
	if budget == nil || budget.ID == "" {
		return nil
	}

	description := buildBudgetDescription(category, merchant)
	displayCurrency := amount.Currency
	if displayCurrency == "" {
		displayCurrency = snapshot.Budget.Currency
	}
	if displayCurrency == "" {
		displayCurrency = "USD"
	}
	amountDisplay := formatAmountDisplay(amount.Major, displayCurrency)

	confidence := 0.65 + 0.1
	if category != "" {
		confidence += 0.05
	}
	if merchant != "" {
		confidence += 0.05
	}
	confidence = math.Round(math.Max(0.45, math.Min(confidence, 0.92))*100) / 100

	var merchantValue *string
	if merchant != "" {
		merchantValue = &merchant
	}

	editable := &domain.EditableMessage{
		Template: "Should I add {{amount}} to {{budget}} for {{description}}?",
		Fields: []domain.EditableField{
			{Key: "amount", Value: amountDisplay, FieldType: domain.FieldAmount},
			{Key: "budget", Value: budget.Title, FieldType: domain.FieldBudget},
			{Key: "description", Value: description, FieldType: domain.FieldDescription},
		},
	}

	return &domain.RuleResult{
		Intent: domain.Intent{
			Tool: domain.ToolAddBudgetEntry,
			Input: domain.AddBudgetEntryInput{
				BudgetID:    budget.ID,
				AmountMinor: amount.Minor,
				Merchant:    merchantValue,
				Note:        description,
			},
		},
		Confidence:      confidence,
		Message:         editable.Render(),
		EditableMessage: editable,
	}
}
