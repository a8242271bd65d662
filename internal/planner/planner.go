// Package planner is the orchestration layer: it routes an utterance through
// the statistical classifier, evaluates every deterministic intent rule and
// selects the best result, or reports an interpretation miss.
package planner

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/toodl-app/mind/internal/logging"
	"github.com/toodl-app/mind/internal/rules"
	"github.com/toodl-app/mind/pkg/classifier"
	"github.com/toodl-app/mind/pkg/domain"
)

// Messages returned on an interpretation miss. Capabilities are spelled out
// so the caller can re-prompt the user.
const (
	notCommandMessage = "That request didn't sound like something I can execute yet. I can add expenses, log budget entries, or schedule Flow tasks."
	noRuleMessage     = "I didn't understand that request. I can add expenses, log budget entries, or schedule Flow tasks."
	overrideMessage   = "Ready to execute your plan."
)

// overrideConfidence applies to intents the user already confirmed by editing
// the message fields.
const overrideConfidence = 0.9

// rulePriority breaks confidence ties with a fixed order.
var rulePriority = map[domain.Tool]int{
	domain.ToolAddExpense:     0,
	domain.ToolAddBudgetEntry: 1,
	domain.ToolAddFlowTask:    2,
}

// Planner evaluates the rule set against interpretation requests. It is
// stateless per request and safe for concurrent use.
type Planner struct {
	router *classifier.Router
	rules  []rules.Rule
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source used for relative date resolution.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.clock = now
		}
	}
}

// New builds a planner over the three intent rules. The router may be nil,
// in which case rules are evaluated in priority order without routing
// advice. The tagger may be nil.
func New(router *classifier.Router, tagger rules.SlotTagger, opts ...Option) *Planner {
	p := &Planner{
		router: router,
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rules = []rules.Rule{
		rules.NewExpenseRule(tagger),
		rules.NewBudgetRule(),
		rules.NewFlowTaskRule(p.clock),
	}
	return p
}

// Plan interprets the request and returns a uniform response. A failed
// status is the expected outcome for chatter and unsupported requests, never
// an error.
func (p *Planner) Plan(req *domain.MindRequest) *domain.MindResponse {
	hints, err := DecodeHints(req.ContextHints)
	if err != nil {
		p.logger.Warn("ignoring malformed context hints", "error", err)
		hints = Hints{}
	}

	if response := p.planOverride(req, hints); response != nil {
		return response
	}

	var traces []domain.DebugTrace
	routing := classifier.RouterResult{}
	if p.router != nil {
		routing = p.router.Classify(req.Utterance)
		traces = append(traces, p.classifierTrace(routing))
	}

	var best *domain.RuleResult
	var bestTool domain.Tool
	for _, rule := range p.orderedRules(routing.TopIntent) {
		result := rule.Parse(req.Utterance, &req.Snapshot)
		if result == nil {
			traces = append(traces, domain.DebugTrace{
				Phase:       "rules",
				Description: fmt.Sprintf("%s abstained", rule.Tool()),
			})
			continue
		}
		traces = append(traces, domain.DebugTrace{
			Phase:       "rules",
			Description: fmt.Sprintf("%s matched", rule.Tool()),
			Data:        map[string]any{"confidence": result.Confidence},
		})
		if best == nil || betterResult(result, rule.Tool(), best, bestTool) {
			best = result
			bestTool = rule.Tool()
		}
	}

	if best == nil {
		message := noRuleMessage
		if p.router != nil && !routing.IsCommand {
			message = notCommandMessage
		}
		traces = append(traces, domain.DebugTrace{
			Phase:       "planner",
			Description: "No rule produced an intent",
		})
		p.logger.Debug("interpretation miss", "utterance_len", len(req.Utterance))
		return &domain.MindResponse{
			Status: domain.StatusFailed,
			Error:  message,
			Debug:  debugTraces(hints, traces),
		}
	}

	traces = append(traces, domain.DebugTrace{
		Phase:       "planner",
		Description: "Selected highest-confidence rule result",
		Data: map[string]any{
			"tool":       string(bestTool),
			"confidence": best.Confidence,
		},
	})
	p.logger.Debug("interpreted utterance",
		"tool", string(bestTool), "confidence", best.Confidence)
	return &domain.MindResponse{
		Status: domain.StatusOK,
		Result: best,
		Debug:  debugTraces(hints, traces),
	}
}

// planOverride short-circuits interpretation when the caller supplies an
// already-confirmed intent, folding edited confirmation fields back in.
func (p *Planner) planOverride(req *domain.MindRequest, hints Hints) *domain.MindResponse {
	intent, err := hints.OverrideIntent()
	if err != nil {
		p.logger.Warn("ignoring malformed intent override", "error", err)
		return nil
	}
	if intent == nil {
		return nil
	}

	overridden := ApplyOverrides(*intent, hints.EditableOverrides, &req.Snapshot)
	message := hints.IntentMessage
	if message == "" {
		message = overrideMessage
	}
	traces := []domain.DebugTrace{{
		Phase:       "planner",
		Description: "Applied caller intent override",
		Data:        map[string]any{"tool": string(overridden.Tool)},
	}}
	return &domain.MindResponse{
		Status: domain.StatusOK,
		Result: &domain.RuleResult{
			Intent:     overridden,
			Confidence: overrideConfidence,
			Message:    message,
		},
		Debug: debugTraces(hints, traces),
	}
}

// orderedRules puts the router's predicted rule first. Routing advice never
// excludes a rule from evaluation.
func (p *Planner) orderedRules(prediction *classifier.IntentPrediction) []rules.Rule {
	if prediction == nil {
		return p.rules
	}
	predicted := domain.Tool(prediction.Label)
	if _, known := rulePriority[predicted]; !known {
		return p.rules
	}
	ordered := make([]rules.Rule, 0, len(p.rules))
	for _, rule := range p.rules {
		if rule.Tool() == predicted {
			ordered = append(ordered, rule)
		}
	}
	for _, rule := range p.rules {
		if rule.Tool() != predicted {
			ordered = append(ordered, rule)
		}
	}
	return ordered
}

func (p *Planner) classifierTrace(routing classifier.RouterResult) domain.DebugTrace {
	data := map[string]any{
		"probCommand": round3(routing.ProbCommand),
		"threshold":   p.router.Threshold(),
		"isCommand":   routing.IsCommand,
	}
	if routing.TopIntent != nil {
		data["topIntent"] = routing.TopIntent.Label
		data["topIntentProbability"] = round3(routing.TopIntent.Probability)
	}
	return domain.DebugTrace{
		Phase:       "planner",
		Description: "Linear classifier routing result",
		Data:        data,
	}
}

// betterResult prefers higher confidence; equal confidences fall back to the
// fixed rule priority order.
func betterResult(candidate *domain.RuleResult, candidateTool domain.Tool, best *domain.RuleResult, bestTool domain.Tool) bool {
	if candidate.Confidence != best.Confidence {
		return candidate.Confidence > best.Confidence
	}
	return rulePriority[candidateTool] < rulePriority[bestTool]
}

func debugTraces(hints Hints, traces []domain.DebugTrace) []domain.DebugTrace {
	if !hints.Debug {
		return nil
	}
	return traces
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
