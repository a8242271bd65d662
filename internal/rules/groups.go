package rules

import (
	"regexp"
	"strings"

	"github.com/toodl-app/mind/pkg/domain"
)

var groupSynonymReplacements = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bbday\b`), "birthday"},
	{regexp.MustCompile(`(?i)\bb-day\b`), "birthday"},
	{regexp.MustCompile(`(?i)\bwknd\b`), "weekend"},
}

var groupHintWords = []string{
	"group", "trip", "party", "crew", "team", "fund", "ledger", "house",
	"household", "family", "birthday", "anniversary", "vacation", "rent",
	"wedding", "reunion", "travel", "holiday", "weekend", "festival",
	"bachelor", "bachelorette", "potluck", "ski",
}

var (
	groupPhrasePattern = regexp.MustCompile(`(?i)\b(?:in|to|under|for)\s+(?:the\s+)?(?P<group>[a-z0-9][a-z0-9&'()\-.\s]{1,60})`)
	groupSkipPattern   = regexp.MustCompile(`(?i)^(?:for|gas|coffee|lunch|dinner|snacks)\b`)
	groupNoisePattern  = regexp.MustCompile(`\b(group|crew|team|fund|squad)\b`)
	groupFillerPattern = regexp.MustCompile(`\b(today|tonight|tomorrow|please|thanks|now)\b`)
	nonAlnumPattern    = regexp.MustCompile(`[^a-z0-9\s]`)
	connectorTail      = regexp.MustCompile(`(?i)(.*?\b(?:group|crew|team|fund|squad)\b)\s+(?:for|with|about|regarding|on|at|re)\b.*$`)
)

// normalizeGroupCandidate reduces a phrase to the comparable core of a group
// name: synonyms expanded, keywords and filler removed, punctuation stripped.
func normalizeGroupCandidate(value string) string {
	working := value
	for _, entry := range groupSynonymReplacements {
		working = entry.pattern.ReplaceAllString(working, entry.replacement)
	}
	working = strings.ToLower(working)
	working = groupNoisePattern.ReplaceAllString(working, "")
	working = groupFillerPattern.ReplaceAllString(working, "")
	working = nonAlnumPattern.ReplaceAllString(working, " ")
	return normalizeWhitespace(working)
}

func trimConnectorTail(value string) string {
	if m := connectorTail.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1])
	}
	return value
}

func hasGroupHint(normalized, lower string) bool {
	for _, hint := range groupHintWords {
		if strings.Contains(normalized, hint) || strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func trimTrailingS(value string) string {
	if strings.HasSuffix(value, "s") {
		return value[:len(value)-1]
	}
	return value
}

// resolveGroup identifies which known expense group the utterance refers to.
// It tries, in order: the group name appearing verbatim in the utterance, the
// statistical slot hint, the regex-extracted phrase, and finally a fuzzy
// comparison with a margin over the runner-up. When a phrase was present but
// no group clears the threshold the resolution fails rather than guessing.
func resolveGroup(utterance, slotHint string, groups []domain.ExpenseGroup) *domain.ExpenseGroup {
	normalizedUtterance := normalizeGroupCandidate(utterance)

	for i := range groups {
		normalizedName := normalizeGroupCandidate(groups[i].Name)
		if normalizedName == "" {
			continue
		}
		if strings.Contains(normalizedUtterance, normalizedName) ||
			strings.Contains(normalizedName, normalizedUtterance) {
			return &groups[i]
		}
	}

	if hint := normalizeGroupCandidate(slotHint); hint != "" {
		for i := range groups {
			normalizedName := normalizeGroupCandidate(groups[i].Name)
			if normalizedName == "" {
				continue
			}
			if normalizedName == hint ||
				strings.Contains(normalizedName, hint) ||
				strings.Contains(hint, normalizedName) {
				return &groups[i]
			}
		}
	}

	candidate := strings.TrimSpace(slotHint)
	for _, m := range groupPhrasePattern.FindAllStringSubmatch(utterance, -1) {
		trimmed := strings.TrimSpace(m[1])
		normalized := normalizeGroupCandidate(trimmed)
		if normalized == "" {
			continue
		}
		if groupSkipPattern.MatchString(trimmed) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[0]), "for ") &&
			!hasGroupHint(normalized, strings.ToLower(trimmed)) {
			continue
		}
		if candidate == "" {
			candidate = trimConnectorTail(trimmed)
		}
	}
	if candidate == "" {
		return nil
	}

	normalizedCandidate := normalizeGroupCandidate(trimConnectorTail(candidate))
	candidateSingular := trimTrailingS(normalizedCandidate)

	type fuzzyMatch struct {
		group    *domain.ExpenseGroup
		distance int
	}
	var fuzzy []fuzzyMatch
	for i := range groups {
		normalizedName := normalizeGroupCandidate(groups[i].Name)
		if normalizedName == "" {
			continue
		}
		if normalizedName == normalizedCandidate ||
			strings.Contains(normalizedName, normalizedCandidate) ||
			strings.Contains(normalizedCandidate, normalizedName) {
			return &groups[i]
		}
		dist := min(
			levenshtein(normalizedName, normalizedCandidate),
			levenshtein(trimTrailingS(normalizedName), candidateSingular),
		)
		fuzzy = append(fuzzy, fuzzyMatch{group: &groups[i], distance: dist})
	}

	if len(fuzzy) == 0 {
		return nil
	}
	best := fuzzy[0]
	secondBest := -1
	for _, entry := range fuzzy[1:] {
		if entry.distance < best.distance {
			if secondBest == -1 || best.distance < secondBest {
				secondBest = best.distance
			}
			best = entry
		} else if secondBest == -1 || entry.distance < secondBest {
			secondBest = entry.distance
		}
	}
	threshold := max(2, len(normalizedCandidate)*3/10)
	if best.distance <= threshold && (secondBest == -1 || best.distance+1 < secondBest) {
		return best.group
	}
	return nil
}
