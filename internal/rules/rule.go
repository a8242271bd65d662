// Package rules contains the deterministic intent parsers: independent pure
// functions that combine regex and lexicon extraction with snapshot-based
// entity resolution. A rule returns nil, never an error, whenever a required
// element cannot be extracted or resolved above its match threshold.
package rules

import (
	"github.com/toodl-app/mind/pkg/domain"
)

// Rule is one deterministic intent parser. Parse must be a pure function of
// its inputs so identical calls yield identical results.
type Rule interface {
	Tool() domain.Tool
	Parse(utterance string, snapshot *domain.MindExperienceSnapshot) *domain.RuleResult
}

// SlotTagger supplies statistical slot hints to rules that want them. The
// token classifier implements it; tests may pass a stub.
type SlotTagger interface {
	ExtractTokenSlots(text string) domain.TokenSlotExtraction
}

// NopTagger is a SlotTagger that never produces hints.
type NopTagger struct{}

// ExtractTokenSlots returns an empty extraction.
func (NopTagger) ExtractTokenSlots(string) domain.TokenSlotExtraction {
	return domain.TokenSlotExtraction{Slots: map[domain.SlotName]domain.SlotValue{}}
}
