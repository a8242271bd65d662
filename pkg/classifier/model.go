package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/toodl-app/mind/pkg/domain"
)

// TokenModel is the trained slot-classifier artifact: a feature vocabulary,
// one dense weight row per class, per-class intercepts and the class label
// list. It is read-only after loading.
type TokenModel struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Coef       [][]float64    `json:"coef"`
	Intercept  []float64      `json:"intercept"`
	Classes    []string       `json:"classes"`
}

// RouterModel is the tf-idf logistic artifact used by the utterance router.
// Binary (command/not-command) models carry a single coefficient row;
// intent models carry one row per class.
type RouterModel struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	NgramRange []int          `json:"ngram_range"`
	StopWords  []string       `json:"stop_words,omitempty"`
	Coef       [][]float64    `json:"coef"`
	Intercept  []float64      `json:"intercept"`
	Classes    []string       `json:"classes"`
}

// ParseTokenModel decodes and sanity-checks a token model artifact.
func ParseTokenModel(data []byte) (*TokenModel, error) {
	var model TokenModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelMalformed, err)
	}
	if len(model.Vocabulary) == 0 || len(model.Classes) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary or class list", domain.ErrModelMalformed)
	}
	if len(model.Coef) != len(model.Classes) {
		return nil, fmt.Errorf("%w: %d weight rows for %d classes",
			domain.ErrModelMalformed, len(model.Coef), len(model.Classes))
	}
	if len(model.Intercept) != len(model.Classes) {
		return nil, fmt.Errorf("%w: %d intercepts for %d classes",
			domain.ErrModelMalformed, len(model.Intercept), len(model.Classes))
	}
	width := len(model.Vocabulary)
	for i, row := range model.Coef {
		if len(row) != width {
			return nil, fmt.Errorf("%w: weight row %d has width %d, vocabulary has %d entries",
				domain.ErrModelMalformed, i, len(row), width)
		}
	}
	return &model, nil
}

// ParseRouterModel decodes and sanity-checks a router model artifact.
func ParseRouterModel(data []byte) (*RouterModel, error) {
	var model RouterModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelMalformed, err)
	}
	if len(model.Vocabulary) == 0 || len(model.Coef) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary or weights", domain.ErrModelMalformed)
	}
	if len(model.NgramRange) == 0 {
		model.NgramRange = []int{1, 1}
	}
	if len(model.IDF) != len(model.Vocabulary) {
		return nil, fmt.Errorf("%w: %d idf entries for %d vocabulary terms",
			domain.ErrModelMalformed, len(model.IDF), len(model.Vocabulary))
	}
	width := len(model.Vocabulary)
	for i, row := range model.Coef {
		if len(row) != width {
			return nil, fmt.Errorf("%w: weight row %d has width %d, vocabulary has %d entries",
				domain.ErrModelMalformed, i, len(row), width)
		}
	}
	return &model, nil
}

// LoadTokenModel reads a token model artifact from disk.
func LoadTokenModel(path string) (*TokenModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelMissing, path)
		}
		return nil, fmt.Errorf("read token model: %w", err)
	}
	model, err := ParseTokenModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

// LoadRouterModel reads a router model artifact from disk.
func LoadRouterModel(path string) (*RouterModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelMissing, path)
		}
		return nil, fmt.Errorf("read router model: %w", err)
	}
	model, err := ParseRouterModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}
