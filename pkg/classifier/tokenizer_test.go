package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
	})

	t.Run("words numbers symbols punctuation", func(t *testing.T) {
		spans := Tokenize("Add $30.00 to groceries!")
		texts := make([]string, 0, len(spans))
		for _, span := range spans {
			texts = append(texts, span.Text)
		}
		assert.Equal(t, []string{"Add", "$", "30", ".", "00", "to", "groceries", "!"}, texts)
	})

	t.Run("spans are increasing and non-overlapping", func(t *testing.T) {
		text := "Record 470 petrol in the wedding budget, log it."
		spans := Tokenize(text)
		require.NotEmpty(t, spans)
		prevEnd := 0
		for _, span := range spans {
			assert.GreaterOrEqual(t, span.Start, prevEnd)
			assert.Less(t, span.Start, span.End)
			assert.Equal(t, span.Text, text[span.Start:span.End])
			prevEnd = span.End
		}
	})

	t.Run("currency symbols tokenize on their own", func(t *testing.T) {
		spans := Tokenize("€470")
		require.Len(t, spans, 2)
		assert.Equal(t, "€", spans[0].Text)
		assert.Equal(t, "470", spans[1].Text)
	})
}

func TestWordShape(t *testing.T) {
	cases := map[string]string{
		"Safeway": "Xxxxxxx",
		"40th":    "ddxx",
		"USD":     "XXX",
		"$":       "$",
		"a-b":     "x-x",
	}
	for token, want := range cases {
		assert.Equal(t, want, wordShape(token), "shape of %q", token)
	}
}

func TestBuildFeatures(t *testing.T) {
	tokens := Tokenize("dinner with Sunset crew")

	t.Run("interior token", func(t *testing.T) {
		features := BuildFeatures(tokens, 2) // Sunset
		assert.Equal(t, float64(1), features["bias"])
		assert.Equal(t, float64(1), features["token=sunset"])
		assert.Equal(t, float64(1), features["prefix3=sun"])
		assert.Equal(t, float64(1), features["suffix3=set"])
		assert.Equal(t, float64(1), features["shape=Xxxxxx"])
		assert.Equal(t, float64(1), features["prev_token=with"])
		assert.Equal(t, float64(1), features["next_token=crew"])
		assert.Equal(t, float64(1), features["prev_bigram=with_sunset"])
		assert.Equal(t, float64(1), features["next_bigram=sunset_crew"])
		assert.NotContains(t, features, "group_keyword")
	})

	t.Run("boundary sentinels", func(t *testing.T) {
		first := BuildFeatures(tokens, 0)
		assert.Equal(t, float64(1), first["prev_token=<bos>"])
		last := BuildFeatures(tokens, len(tokens)-1)
		assert.Equal(t, float64(1), last["next_token=<eos>"])
	})

	t.Run("lexicon and character flags", func(t *testing.T) {
		features := BuildFeatures(tokens, 3) // crew
		assert.Equal(t, float64(1), features["group_keyword"])

		money := Tokenize("$30")
		assert.Equal(t, float64(1), BuildFeatures(money, 0)["has_currency_symbol"])
		assert.Equal(t, float64(1), BuildFeatures(money, 1)["has_digit"])
	})

	t.Run("short token affixes", func(t *testing.T) {
		features := BuildFeatures(Tokenize("to"), 0)
		assert.Equal(t, float64(1), features["prefix3=to"])
		assert.Equal(t, float64(1), features["suffix3=to"])
	})
}
