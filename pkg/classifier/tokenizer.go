package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/toodl-app/mind/pkg/domain"
)

// tokenPattern yields maximal letter/digit runs, maximal currency-symbol
// runs, or single non-space characters, left to right.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+|[$€£₹]+|[^\s]`)

var currencySymbolPattern = regexp.MustCompile(`[$€£₹]`)

// groupKeywords is the fixed lexicon of words that mark a group mention.
var groupKeywords = map[string]bool{
	"group": true,
	"crew":  true,
	"trip":  true,
	"team":  true,
	"fund":  true,
}

// Tokenize splits text into ordered, non-overlapping spans with byte
// offsets. Empty input yields an empty sequence.
func Tokenize(text string) []domain.TokenSpan {
	if text == "" {
		return nil
	}
	matches := tokenPattern.FindAllStringIndex(text, -1)
	spans := make([]domain.TokenSpan, 0, len(matches))
	for _, match := range matches {
		spans = append(spans, domain.TokenSpan{
			Text:  text[match[0]:match[1]],
			Start: match[0],
			End:   match[1],
		})
	}
	return spans
}

// wordShape generalizes a token: digits become d, uppercase letters X,
// lowercase letters x, anything else is kept literal.
func wordShape(token string) string {
	var shape strings.Builder
	for _, r := range token {
		switch {
		case unicode.IsDigit(r):
			shape.WriteByte('d')
		case r >= 'A' && r <= 'Z':
			shape.WriteByte('X')
		case r >= 'a' && r <= 'z':
			shape.WriteByte('x')
		default:
			shape.WriteRune(r)
		}
	}
	return shape.String()
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func runeSuffix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// BuildFeatures derives the sparse named-feature set for the token at index.
// Pure function of immutable input; every active feature has value 1.
func BuildFeatures(tokens []domain.TokenSpan, index int) map[string]float64 {
	token := tokens[index]
	lower := strings.ToLower(token.Text)
	prev := "<bos>"
	if index > 0 {
		prev = strings.ToLower(tokens[index-1].Text)
	}
	next := "<eos>"
	if index+1 < len(tokens) {
		next = strings.ToLower(tokens[index+1].Text)
	}

	features := map[string]float64{
		"bias":                               1,
		"token=" + lower:                     1,
		"prefix3=" + runePrefix(lower, 3):    1,
		"suffix3=" + runeSuffix(lower, 3):    1,
		"shape=" + wordShape(token.Text):     1,
		"prev_token=" + prev:                 1,
		"next_token=" + next:                 1,
		"prev_bigram=" + prev + "_" + lower:  1,
		"next_bigram=" + lower + "_" + next:  1,
	}

	if strings.ContainsFunc(token.Text, unicode.IsDigit) {
		features["has_digit"] = 1
	}
	if currencySymbolPattern.MatchString(token.Text) {
		features["has_currency_symbol"] = 1
	}
	if groupKeywords[lower] {
		features["group_keyword"] = 1
	}

	return features
}
