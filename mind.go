package mind

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/toodl-app/mind/internal/planner"
	"github.com/toodl-app/mind/internal/rules"
	"github.com/toodl-app/mind/pkg/classifier"
	"github.com/toodl-app/mind/pkg/domain"
)

// Engine is a configured interpreter. It holds only immutable model state
// after New returns and is safe for concurrent use.
type Engine struct {
	planner *planner.Planner
	tagger  *classifier.TokenClassifier
	router  *classifier.Router

	logger           *slog.Logger
	clock            func() time.Time
	tokenModelPath   string
	commandModelPath string
	intentModelPath  string
	routerThreshold  float64
	routerDisabled   bool

	info ModelInfo
}

// ModelInfo describes the loaded artifacts, for diagnostics and the MCP
// model resource.
type ModelInfo struct {
	TokenVocabulary  int      `json:"tokenVocabulary"`
	TokenClasses     []string `json:"tokenClasses"`
	RouterVocabulary int      `json:"routerVocabulary"`
	IntentClasses    []string `json:"intentClasses"`
	RouterThreshold  float64  `json:"routerThreshold"`
	Version          string   `json:"version"`
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTokenModelPath loads the slot-classifier artifact from disk instead of
// the embedded default.
func WithTokenModelPath(path string) Option {
	return func(e *Engine) {
		e.tokenModelPath = path
	}
}

// WithRouterModelPaths loads the command and intent router artifacts from
// disk instead of the embedded defaults.
func WithRouterModelPaths(commandPath, intentPath string) Option {
	return func(e *Engine) {
		e.commandModelPath = commandPath
		e.intentModelPath = intentPath
	}
}

// WithRouterThreshold overrides the command probability cutoff.
func WithRouterThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.routerThreshold = threshold
	}
}

// WithoutRouter disables the statistical router; rules are evaluated in
// fixed priority order.
func WithoutRouter() Option {
	return func(e *Engine) {
		e.routerDisabled = true
	}
}

// WithClock overrides the time source for relative date resolution. Intended
// for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// New initializes an Engine. Model artifacts load from the embedded defaults
// unless overridden by path; a missing or malformed artifact is a fatal
// startup error, since the classifier cannot function without its weights.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{clock: time.Now}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	tokenModel, err := eng.loadTokenModel()
	if err != nil {
		return nil, err
	}
	eng.tagger = classifier.NewTokenClassifier(tokenModel)
	eng.info = ModelInfo{
		TokenVocabulary: len(tokenModel.Vocabulary),
		TokenClasses:    tokenModel.Classes,
		Version:         strings.TrimSpace(Version),
	}

	if !eng.routerDisabled {
		command, intent, err := eng.loadRouterModels()
		if err != nil {
			return nil, err
		}
		eng.router = classifier.NewRouter(command, intent, eng.routerThreshold)
		eng.info.RouterVocabulary = len(command.Vocabulary)
		eng.info.IntentClasses = intent.Classes
		eng.info.RouterThreshold = eng.router.Threshold()
	}

	eng.planner = planner.New(eng.router, eng.tagger,
		planner.WithLogger(eng.logger),
		planner.WithClock(eng.clock),
	)
	eng.logger.Debug("engine initialized",
		"token_vocabulary", eng.info.TokenVocabulary,
		"router_enabled", !eng.routerDisabled)
	return eng, nil
}

func (e *Engine) loadTokenModel() (*classifier.TokenModel, error) {
	if e.tokenModelPath != "" {
		return classifier.LoadTokenModel(e.tokenModelPath)
	}
	return classifier.DefaultTokenModel()
}

func (e *Engine) loadRouterModels() (command, intent *classifier.RouterModel, err error) {
	if e.commandModelPath == "" && e.intentModelPath == "" {
		return classifier.DefaultRouterModels()
	}
	if e.commandModelPath == "" || e.intentModelPath == "" {
		return nil, nil, fmt.Errorf("router model paths must be set together")
	}
	command, err = classifier.LoadRouterModel(e.commandModelPath)
	if err != nil {
		return nil, nil, err
	}
	intent, err = classifier.LoadRouterModel(e.intentModelPath)
	if err != nil {
		return nil, nil, err
	}
	return command, intent, nil
}

// Handle interprets one request. A failed status reports ambiguous or
// unsupported input; it is an expected outcome, not an error.
func (e *Engine) Handle(req *domain.MindRequest) *domain.MindResponse {
	if req == nil {
		return &domain.MindResponse{
			Status: domain.StatusFailed,
			Error:  "empty request",
		}
	}
	return e.planner.Plan(req)
}

// ExtractSlots exposes the statistical slot classifier directly, for
// diagnostics and callers that want tagged spans without intent planning.
func (e *Engine) ExtractSlots(text string) domain.TokenSlotExtraction {
	return e.tagger.ExtractTokenSlots(text)
}

// ApplyOverrides folds user-edited confirmation fields back into an intent.
// Callers use this after the user adjusts the editable message and before
// executing the intent.
func (e *Engine) ApplyOverrides(intent domain.Intent, overrides map[string]string, snapshot *domain.MindExperienceSnapshot) domain.Intent {
	return planner.ApplyOverrides(intent, overrides, snapshot)
}

// MatchBudgetTitle resolves a budget name against the snapshot's documents.
func MatchBudgetTitle(name string, budget domain.BudgetContext) *domain.BudgetDocument {
	return rules.MatchBudgetTitle(name, budget)
}

// ModelInfo reports the loaded model artifacts.
func (e *Engine) ModelInfo() ModelInfo {
	return e.info
}
