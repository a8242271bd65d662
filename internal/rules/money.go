package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// symbolToCurrency maps currency glyphs to ISO codes.
var symbolToCurrency = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "CNY",
	"₹": "INR",
}

// wordToCurrency maps spelled-out currency words to ISO codes.
var wordToCurrency = map[string]string{
	"usd":      "USD",
	"dollar":   "USD",
	"dollars":  "USD",
	"bucks":    "USD",
	"cad":      "CAD",
	"aud":      "AUD",
	"sgd":      "SGD",
	"eur":      "EUR",
	"euro":     "EUR",
	"euros":    "EUR",
	"gbp":      "GBP",
	"sterling": "GBP",
	"pounds":   "GBP",
	"inr":      "INR",
	"rs":       "INR",
	"rupee":    "INR",
	"rupees":   "INR",
	"cny":      "CNY",
	"yuan":     "CNY",
	"jpy":      "JPY",
	"yen":      "JPY",
	"chf":      "CHF",
	"nzd":      "NZD",
	"zar":      "ZAR",
	"brl":      "BRL",
	"mxn":      "MXN",
}

// currencySymbols maps ISO codes back to a display glyph.
var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"SGD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"CNY": "¥",
	"JPY": "¥",
}

var moneyPattern = regexp.MustCompile(`(?i)(?:(?P<symbol>[$€£¥₹])\s*)?(?P<amount>\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?)(?:\s*(?P<code>usd|dollars?|bucks|cad|aud|sgd|eur|euros?|gbp|sterling|pounds|inr|rs|rupees?|cny|yuan|jpy|yen|chf|nzd|zar|brl|mxn)\b)?`)

// amountMatch is one currency-qualified number found in the utterance. Bare
// numbers without a symbol or currency word never become amountMatches.
type amountMatch struct {
	Major    float64
	Minor    int64
	Currency string
	Symbol   string
	Index    int
	End      int
}

// extractAmount returns the single qualifying monetary amount, or nil when
// the utterance carries none or carries more than one distinct value.
func extractAmount(utterance string) *amountMatch {
	var matches []amountMatch
	for _, idx := range moneyPattern.FindAllStringSubmatchIndex(utterance, -1) {
		symbol := submatch(utterance, idx, 1)
		raw := submatch(utterance, idx, 2)
		code := strings.ToLower(submatch(utterance, idx, 3))
		if symbol == "" && code == "" {
			continue
		}

		major, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || major <= 0 {
			continue
		}

		currency := ""
		if code != "" {
			currency = wordToCurrency[code]
		}
		if currency == "" && symbol != "" {
			currency = symbolToCurrency[symbol]
		}
		matches = append(matches, amountMatch{
			Major:    major,
			Minor:    int64(math.Round(major * 100)),
			Currency: currency,
			Symbol:   symbol,
			Index:    idx[0],
			End:      idx[1],
		})
	}
	if len(matches) == 0 {
		return nil
	}

	// Repeated mentions of the same value are fine; conflicting values are
	// too ambiguous to act on.
	for _, candidate := range matches[1:] {
		if candidate.Minor != matches[0].Minor {
			return nil
		}
	}
	return &matches[0]
}

func submatch(text string, idx []int, group int) string {
	start, end := idx[2*group], idx[2*group+1]
	if start < 0 {
		return ""
	}
	return text[start:end]
}

// resolveExpenseCurrency settles the "$" ambiguity against the matched
// group: the glyph is shared by several currencies, so a dollar sign only
// inherits the group currency when that currency also displays as "$".
func resolveExpenseCurrency(amount *amountMatch, groupCurrency string) string {
	if amount.Symbol == "$" && groupCurrency != "" && currencySymbols[groupCurrency] == "$" {
		return groupCurrency
	}
	if amount.Currency != "" {
		return amount.Currency
	}
	if groupCurrency != "" {
		return groupCurrency
	}
	return "USD"
}

// formatAmountDisplay renders an amount for confirmation text, e.g. "$48.75".
// Currencies without a known glyph render bare.
func formatAmountDisplay(major float64, currency string) string {
	return fmt.Sprintf("%s%.2f", currencySymbols[strings.ToUpper(currency)], major)
}
