package rules

import (
	"regexp"
	"strings"

	"github.com/toodl-app/mind/pkg/domain"
)

// budgetSynonymMap folds colloquial budget names onto canonical titles.
var budgetSynonymMap = map[string]string{
	"vacation":       "travel",
	"holidays":       "travel",
	"holiday":        "travel",
	"household":      "family",
	"bills":          "utilities",
	"outdoor":        "adventure",
	"adventures":     "adventure",
	"future":         "savings",
	"future savings": "savings",
	"reno":           "home renovation",
	"renovation":     "home renovation",
}

var (
	budgetPhrasePattern = regexp.MustCompile(`(?i)\b(?:in|into|to|for)\s+(?:the\s+)?(?P<budget>[a-z0-9&'()\-.\s]{2,60}?)\s+budget\b`)
	budgetInlinePattern = regexp.MustCompile(`(?i)\b(?P<budget>[a-z0-9&'()\-.\s]{2,60})\s+budget\b`)
	budgetWordPattern   = regexp.MustCompile(`(?i)\bbudget\b`)
	budgetTrailPattern  = regexp.MustCompile(`(?i)(?:in|into|for|to)\s+(?:the\s+)?([a-z0-9&'()\-.\s]+)$`)
	budgetArticle       = regexp.MustCompile(`(?i)^the\s+`)
)

func normalizeBudgetCandidate(value string) string {
	working := strings.ToLower(value)
	working = budgetWordPattern.ReplaceAllString(working, "")
	working = nonAlnumPattern.ReplaceAllString(working, " ")
	return normalizeWhitespace(working)
}

// cleanBudgetCandidate keeps the last connector-introduced phrase so a match
// like "savings in wedding" resolves to the wedding budget.
func cleanBudgetCandidate(value string) string {
	working := budgetArticle.ReplaceAllString(strings.TrimSpace(value), "")
	if m := budgetTrailPattern.FindStringSubmatch(working); m != nil {
		working = strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(budgetWordPattern.ReplaceAllString(working, ""))
}

func budgetSimilarity(docNormalized, docSingular, normalized, singular string) int {
	score := 0
	if strings.Contains(docNormalized, normalized) {
		score = max(score, len(normalized))
	}
	if strings.Contains(normalized, docNormalized) {
		score = max(score, len(docNormalized))
	}
	if strings.Contains(docSingular, singular) {
		score = max(score, len(singular))
	}
	if strings.Contains(singular, docSingular) {
		score = max(score, len(docSingular))
	}
	return score
}

type normalizedDoc struct {
	doc        *domain.BudgetDocument
	normalized string
	singular   string
}

func normalizeDocs(budget domain.BudgetContext) []normalizedDoc {
	docs := make([]normalizedDoc, 0, len(budget.Documents))
	for i := range budget.Documents {
		normalized := normalizeBudgetCandidate(budget.Documents[i].Title)
		docs = append(docs, normalizedDoc{
			doc:        &budget.Documents[i],
			normalized: normalized,
			singular:   singularizePhrase(normalized),
		})
	}
	return docs
}

// matchDocs tries an exact title match, then the synonym map, then substring
// similarity. Returns nil when nothing scores.
func matchDocs(docs []normalizedDoc, normalized, singular string) *domain.BudgetDocument {
	for _, entry := range docs {
		if entry.normalized == normalized || entry.singular == singular {
			return entry.doc
		}
	}

	target := budgetSynonymMap[normalized]
	if target == "" {
		target = budgetSynonymMap[singular]
	}
	if target != "" {
		for _, entry := range docs {
			if entry.normalized == target || entry.singular == target {
				return entry.doc
			}
		}
	}

	var best *domain.BudgetDocument
	bestScore := 0
	for _, entry := range docs {
		if score := budgetSimilarity(entry.normalized, entry.singular, normalized, singular); score > bestScore {
			best = entry.doc
			bestScore = score
		}
	}
	return best
}

// MatchBudgetTitle resolves a user-supplied budget name, such as an edited
// confirmation field, against the snapshot's documents using the same
// matching tiers the budget rule applies to utterance phrases.
func MatchBudgetTitle(name string, budget domain.BudgetContext) *domain.BudgetDocument {
	normalized := normalizeBudgetCandidate(cleanBudgetCandidate(name))
	if normalized == "" {
		return nil
	}
	return matchDocs(normalizeDocs(budget), normalized, singularizePhrase(normalized))
}

// resolveBudget maps the utterance onto a budget document. An explicit budget
// phrase is matched exactly, then through synonyms, then by substring
// similarity; a phrase that matches nothing fails the resolution. Without a
// phrase the active document, or failing that the first one, is assumed.
func resolveBudget(utterance string, budget domain.BudgetContext) *domain.BudgetDocument {
	var phrases []string
	for _, m := range budgetPhrasePattern.FindAllStringSubmatch(utterance, -1) {
		if candidate := strings.TrimSpace(m[1]); candidate != "" {
			phrases = append(phrases, candidate)
		}
	}
	if len(phrases) == 0 {
		if m := budgetInlinePattern.FindStringSubmatch(utterance); m != nil {
			if candidate := strings.TrimSpace(m[1]); candidate != "" {
				phrases = append(phrases, candidate)
			}
		}
	}

	docs := normalizeDocs(budget)
	hadPhrase := false
	for _, phrase := range phrases {
		normalized := normalizeBudgetCandidate(cleanBudgetCandidate(phrase))
		if normalized == "" {
			continue
		}
		hadPhrase = true
		if doc := matchDocs(docs, normalized, singularizePhrase(normalized)); doc != nil {
			return doc
		}
	}

	// An explicit phrase that resolves to nothing is a miss, not an
	// invitation to guess.
	if hadPhrase {
		return nil
	}

	if len(budget.Documents) > 0 {
		for i := range budget.Documents {
			if budget.Documents[i].ID == budget.ActiveBudgetID {
				return &budget.Documents[i]
			}
		}
		return &budget.Documents[0]
	}
	if budget.ActiveBudgetID != "" {
		return &domain.BudgetDocument{ID: budget.ActiveBudgetID, Title: "Budget", Currency: budget.Currency}
	}
	return nil
}
