package rules

import (
	"strings"
)

// titleCase capitalizes each whitespace-separated word for display.
func titleCase(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		if len(word) > 1 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		} else {
			words[i] = strings.ToUpper(word)
		}
	}
	return strings.Join(words, " ")
}

func normalizeWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// singularizeToken trims a trailing plural so "groceries" and "grocery"
// compare equal.
func singularizeToken(token string) string {
	if strings.HasSuffix(token, "ies") {
		return token[:len(token)-3] + "y"
	}
	if strings.HasSuffix(token, "s") && len(token) > 3 {
		return token[:len(token)-1]
	}
	return token
}

func singularizePhrase(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = singularizeToken(word)
	}
	return strings.Join(words, " ")
}

// levenshtein computes the edit distance used for fuzzy entity matching.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if ra[j-1] == rb[i-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
