package rules

import (
	"math"
	"regexp"
	"strings"

	"github.com/toodl-app/mind/pkg/domain"
)

var (
	addExpensePrefix = regexp.MustCompile(`(?i)\b(add|log|record|track)\b.{0,30}\b(expense|spend|spending|purchase|charge)\b`)
	moneyFirst       = regexp.MustCompile(`(?i)^\s*[$€£¥₹]?\s*\d+(?:[.,]\d{1,2})?(?:\s+(usd|inr|eur|gbp|cad|aud|sgd|rs|rupees|bucks|dollars))?`)
	leadingVerb      = regexp.MustCompile(`(?i)\b(add|log|record|track)\b`)
	currencyToken    = regexp.MustCompile(`(?i)[$€£¥₹]|\b(usd|inr|eur|gbp|cad|aud|sgd|chf|cny|jpy|nzd|zar|brl|mxn|rs|rupees|rupee|dollars|bucks|euro|euros|pounds|sterling|yen|yuan)\b`)
	expenseKeyword   = regexp.MustCompile(`(?i)\b(expense|spend|spent|spending|purchase|purchased|charge|charged|paid|pay)\b`)

	expenseCategoryPhrase = regexp.MustCompile(`(?i)\b(?:for|on|of)\s+(?P<category>[a-z][a-z0-9&'/\-\s]{1,40}?)(?:\s+(?:in|to|under|for|with|between|among|split|toward|towards)\b|[,.!?]|$)`)
	categoryGroupWord     = regexp.MustCompile(`(?i)\bgroup\b`)
	categoryLedgerWord    = regexp.MustCompile(`(?i)\b(account|ledger|budget)\b`)
	categoryDigit         = regexp.MustCompile(`\d`)
	categoryOrdinal       = regexp.MustCompile(`(?i)^\d+-?(?:st|nd|rd|th)?\b`)
	categoryTailPunct     = regexp.MustCompile(`[,.!?]+$`)
	categoryTailConnector = regexp.MustCompile(`(?i)\s+(?:in|to|under|for|with|between|among|split|toward|towards)\b.*$`)
	fallbackWordEdge      = regexp.MustCompile(`^[^\pL\pN/-]+|[^\pL\pN/-]+$`)
	nonCategoryChars      = regexp.MustCompile(`[^a-z0-9\s&/-]`)

	expenseOnDate       = regexp.MustCompile(`(?i)\bon\s+((?:\d{4}-\d{2}-\d{2})|(?:\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)|today|tomorrow|yesterday|tonight|last\s+\w+|next\s+\w+)`)
	expenseRelativeDate = regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday|tonight|last\s+\w+|next\s+\w+)\b`)
)

var expenseCategoryStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "some": true, "my": true, "our": true,
}

var expenseFallbackSkip = map[string]bool{
	"to": true, "in": true, "under": true, "for": true, "with": true,
	"split": true, "between": true, "on": true, "of": true, "spent": true,
	"spend": true, "spending": true, "purchase": true, "purchased": true,
	"purchasing": true, "paying": true, "paid": true, "expense": true,
	"expenses": true, "at": true, "bucks": true, "dollars": true, "usd": true,
	"eur": true, "euro": true, "euros": true, "gbp": true, "pounds": true,
	"cad": true, "inr": true, "rs": true, "rupee": true, "rupees": true,
}

var categoryGroupTerminators = map[string]bool{
	"group": true, "crew": true, "team": true, "fund": true, "squad": true,
	"party": true, "trip": true, "reunion": true, "weekend": true,
	"offsite": true, "family": true, "house": true, "household": true,
	"club": true,
}

var expenseCategorySynonyms = map[string]string{
	"gasoline":  "gas",
	"petrol":    "gas",
	"fuel":      "gas",
	"petroleum": "gas",
	"grocery":   "groceries",
	"uber":      "ride share",
	"lyft":      "ride share",
	"rideshare": "ride share",
	"cab":       "ride share",
	"taxi":      "ride share",
	"hotel":     "lodging",
	"airbnb":    "lodging",
}

// ExpenseRule parses utterances like "Add $20 gas in the birthday group" into
// an add_expense intent against a known group.
type ExpenseRule struct {
	tagger SlotTagger
}

// NewExpenseRule builds the rule with the given slot tagger.
func NewExpenseRule(tagger SlotTagger) *ExpenseRule {
	if tagger == nil {
		tagger = NopTagger{}
	}
	return &ExpenseRule{tagger: tagger}
}

// Tool reports the intent this rule produces.
func (r *ExpenseRule) Tool() domain.Tool { return domain.ToolAddExpense }

func expenseMatchesIntent(utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" {
		return false
	}
	head := normalized
	if len(head) > 80 {
		head = head[:80]
	}
	if addExpensePrefix.MatchString(head) {
		return true
	}
	if moneyFirst.MatchString(normalized) {
		return true
	}
	start := normalized
	if len(start) > 24 {
		start = start[:24]
	}
	hasCurrency := currencyToken.MatchString(normalized)
	if leadingVerb.MatchString(start) && hasCurrency {
		return true
	}
	if hasCurrency && expenseKeyword.MatchString(normalized) {
		return true
	}
	return false
}

func normalizeExpenseCategory(raw string) string {
	trimmed := normalizeWhitespace(nonCategoryChars.ReplaceAllString(strings.ToLower(raw), " "))
	if trimmed == "" {
		return ""
	}
	var tokens []string
	for _, token := range strings.Fields(trimmed) {
		if !expenseCategoryStopwords[token] {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	for _, token := range tokens {
		if mapped := expenseCategorySynonyms[token]; mapped != "" && mapped != token {
			return mapped
		}
	}
	return strings.Join(tokens, " ")
}

func stripCategoryCandidate(value string) string {
	output := strings.TrimSpace(categoryTailPunct.ReplaceAllString(value, " "))
	output = categoryTailConnector.ReplaceAllString(output, "")
	lower := strings.ToLower(output)
	cut := len(output)
	for terminator := range categoryGroupTerminators {
		if idx := wordIndex(lower, terminator); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(output[:cut])
}

// wordIndex finds terminator as a whole word inside lower, or -1.
func wordIndex(lower, word string) int {
	offset := 0
	for {
		idx := strings.Index(lower[offset:], word)
		if idx < 0 {
			return -1
		}
		idx += offset
		end := idx + len(word)
		beforeOK := idx == 0 || !isWordByte(lower[idx-1])
		afterOK := end == len(lower) || !isWordByte(lower[end])
		if beforeOK && afterOK {
			return idx
		}
		offset = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

func extractExpenseCategory(utterance string, amount *amountMatch) string {
	var candidate string
	for _, m := range expenseCategoryPhrase.FindAllStringSubmatch(utterance, -1) {
		raw := m[1]
		if raw == "" || categoryGroupWord.MatchString(raw) || categoryLedgerWord.MatchString(raw) {
			continue
		}
		if categoryDigit.MatchString(raw) && !categoryOrdinal.MatchString(strings.TrimSpace(raw)) {
			continue
		}
		candidate = strings.TrimSpace(raw)
		break
	}
	candidate = stripCategoryCandidate(candidate)

	if candidate == "" && amount != nil {
		afterAmount := strings.TrimSpace(utterance[amount.End:])
		var collected []string
		for _, word := range strings.Fields(afterAmount) {
			sanitized := fallbackWordEdge.ReplaceAllString(word, "")
			if sanitized == "" {
				continue
			}
			lower := strings.ToLower(sanitized)
			if expenseFallbackSkip[lower] {
				if len(collected) > 0 {
					break
				}
				continue
			}
			if categoryGroupTerminators[lower] {
				break
			}
			collected = append(collected, sanitized)
			if len(collected) == 2 {
				break
			}
		}
		candidate = strings.Join(collected, " ")
	}

	return normalizeExpenseCategory(candidate)
}

func extractExpenseDate(utterance string) string {
	if m := expenseOnDate.FindStringSubmatch(utterance); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := expenseRelativeDate.FindStringSubmatch(utterance); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// Parse evaluates the utterance and returns an add_expense result, or nil
// when the intent signal, a single unambiguous amount, or the group are
// missing.
func (r *ExpenseRule) Parse(utterance string, snapshot *domain.MindExperienceSnapshot) *domain.RuleResult {
	if strings.TrimSpace(utterance) == "" || snapshot == nil {
		return nil
	}
	if !expenseMatchesIntent(utterance) {
		return nil
	}
	amount := extractAmount(utterance)
	if amount == nil {
		return nil
	}

	slots := r.tagger.ExtractTokenSlots(utterance).Slots
	groupHint := slots[domain.SlotGroupName].Value

	category := extractExpenseCategory(utterance, amount)
	group := resolveGroup(utterance, groupHint, snapshot.Expenses.Groups)
	if group == nil {
		return nil
	}
	occurredAt := extractExpenseDate(utterance)

	description := slots[domain.SlotNote].Value
	if description == "" {
		description = slots[domain.SlotMerchant].Value
	}
	if description == "" {
		if category != "" {
			description = titleCase(category)
		} else {
			description = strings.TrimSpace(utterance)
			if len(description) > 120 {
				description = description[:120]
			}
		}
	}

	currency := resolveExpenseCurrency(amount, group.Currency)
	amountDisplay := formatAmountDisplay(amount.Major, currency)

	confidence := 0.6 + 0.2
	if category != "" {
		confidence += 0.05
	}
	confidence = math.Round(math.Max(0.35, math.Min(confidence, 0.92))*100) / 100

	messageParts := []string{"Queued a group expense", "for " + group.Name}
	if category != "" {
		messageParts = append(messageParts, "category "+titleCase(category))
	}

	template := "Add {{amount}} to {{group}} for {{description}}?"
	fields := []domain.EditableField{
		{Key: "amount", Value: amountDisplay, FieldType: domain.FieldAmount},
		{Key: "group", Value: group.Name, FieldType: domain.FieldGroup},
		{Key: "description", Value: description, FieldType: domain.FieldDescription},
	}
	if occurredAt != "" {
		template = "Add {{amount}} to {{group}} for {{description}} on {{date}}?"
		fields = append(fields, domain.EditableField{
			Key: "date", Value: occurredAt, FieldType: domain.FieldDate,
		})
	}

	return &domain.RuleResult{
		Intent: domain.Intent{
			Tool: domain.ToolAddExpense,
			Input: domain.AddExpenseInput{
				AmountMinor: amount.Minor,
				Currency:    currency,
				Description: description,
				GroupName:   group.Name,
				OccurredAt:  occurredAt,
			},
		},
		Confidence: confidence,
		Message:    strings.Join(messageParts, " "),
		EditableMessage: &domain.EditableMessage{
			Template: template,
			Fields:   fields,
		},
	}
}
