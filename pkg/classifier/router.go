package classifier

import (
	"math"
	"regexp"
	"strings"
)

// DefaultRouterThreshold is the probability above which an utterance is
// considered a command.
const DefaultRouterThreshold = 0.6

var sanitizePattern = regexp.MustCompile(`[^a-z0-9\s$]`)

// IntentPrediction is the router's best guess at which rule will match.
type IntentPrediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// RouterResult reports whether an utterance looks like a command and, when it
// does, which intent it most resembles. The planner uses this to order rule
// evaluation; it never hard-gates the rules.
type RouterResult struct {
	ProbCommand         float64            `json:"probCommand"`
	IsCommand           bool               `json:"isCommand"`
	TopIntent           *IntentPrediction  `json:"topIntent,omitempty"`
	IntentProbabilities map[string]float64 `json:"intentProbabilities,omitempty"`
}

// Router is the tf-idf + logistic utterance classifier: a binary
// command/not-command stage followed by a per-intent scoring stage.
type Router struct {
	command   *RouterModel
	intent    *RouterModel
	threshold float64
}

// NewRouter builds a router from loaded artifacts. A non-positive threshold
// falls back to DefaultRouterThreshold.
func NewRouter(command, intent *RouterModel, threshold float64) *Router {
	if threshold <= 0 {
		threshold = DefaultRouterThreshold
	}
	return &Router{command: command, intent: intent, threshold: threshold}
}

// Threshold reports the configured command probability cutoff.
func (r *Router) Threshold() float64 {
	return r.threshold
}

func routerTokens(text string, model *RouterModel) []string {
	lowered := sanitizePattern.ReplaceAllString(strings.ToLower(text), " ")
	tokens := strings.Fields(lowered)
	if len(model.StopWords) == 0 {
		return tokens
	}
	stop := make(map[string]bool, len(model.StopWords))
	for _, word := range model.StopWords {
		stop[word] = true
	}
	kept := tokens[:0]
	for _, token := range tokens {
		if !stop[token] {
			kept = append(kept, token)
		}
	}
	return kept
}

type sparseEntry struct {
	idx int
	val float64
}

// buildVector produces the tf-idf vector for text: augmented term frequency
// (0.5 + 0.5*count/max) times the model's idf weight, over word n-grams in
// the model's configured range.
func buildVector(text string, model *RouterModel) []sparseEntry {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := routerTokens(text, model)
	minN, maxN := 1, 1
	if len(model.NgramRange) > 0 {
		minN = model.NgramRange[0]
		maxN = minN
	}
	if len(model.NgramRange) > 1 {
		maxN = model.NgramRange[1]
	}

	counts := make(map[int]int)
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if idx, ok := model.Vocabulary[gram]; ok {
				counts[idx]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}
	entries := make([]sparseEntry, 0, len(counts))
	for idx, count := range counts {
		tf := 0.5 + 0.5*float64(count)/float64(maxCount)
		entries = append(entries, sparseEntry{idx: idx, val: tf * model.IDF[idx]})
	}
	return entries
}

func dot(vec []sparseEntry, weights []float64) float64 {
	var sum float64
	for _, entry := range vec {
		sum += entry.val * weights[entry.idx]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Classify runs the binary stage and, when the utterance clears the command
// threshold, the per-intent stage.
func (r *Router) Classify(text string) RouterResult {
	vector := buildVector(text, r.command)
	if len(vector) == 0 {
		return RouterResult{}
	}
	z := dot(vector, r.command.Coef[0]) + r.command.Intercept[0]
	result := RouterResult{ProbCommand: sigmoid(z)}
	result.IsCommand = result.ProbCommand >= r.threshold
	if !result.IsCommand || r.intent == nil {
		return result
	}

	intentVector := buildVector(text, r.intent)
	if len(intentVector) == 0 {
		return result
	}
	probabilities := make(map[string]float64, len(r.intent.Classes))
	bestIdx := 0
	scores := make([]float64, len(r.intent.Coef))
	for idx, weights := range r.intent.Coef {
		scores[idx] = sigmoid(dot(intentVector, weights) + r.intent.Intercept[idx])
		if idx < len(r.intent.Classes) {
			probabilities[r.intent.Classes[idx]] = scores[idx]
		}
		if scores[idx] > scores[bestIdx] {
			bestIdx = idx
		}
	}
	if bestIdx < len(r.intent.Classes) {
		result.TopIntent = &IntentPrediction{
			Label:       r.intent.Classes[bestIdx],
			Probability: scores[bestIdx],
		}
		result.IntentProbabilities = probabilities
	}
	return result
}
