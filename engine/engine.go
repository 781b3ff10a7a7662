package engine

import (
	"context"

	"github.com/clinicore/remedy-api/repertory"
)

// Summary aggregates counts over the full suggestion set.
type Summary struct {
	TotalRemedies  int `json:"totalRemedies"`
	HighConfidence int `json:"highConfidence"`
	Warnings       int `json:"warnings"`
}

// SuggestResponse is the outbound contract of the engine, best remedy first.
type SuggestResponse struct {
	TopRemedies  []RemedySuggestion `json:"topRemedies"`
	Summary      Summary            `json:"summary"`
	Narrative    string             `json:"narrative,omitempty"`
	CaseRecordID string             `json:"caseRecordId,omitempty"`
}

// Engine runs the six-stage suggestion pipeline. It holds only immutable
// configuration and an optional history provider; every Suggest call is pure
// with respect to shared state, so one Engine serves all requests.
type Engine struct {
	rules   *Ruleset
	history HistoryProvider
}

// New creates an engine with the given tuning values. history may be nil,
// which disables the advisory repetition warning.
func New(rules *Ruleset, history HistoryProvider) *Engine {
	if rules == nil {
		rules = DefaultRuleset()
	}
	return &Engine{rules: rules, history: history}
}

// Rules exposes the active tuning values (read-only by convention).
func (e *Engine) Rules() *Ruleset {
	return e.rules
}

// Suggest runs the pipeline over one case against the given reference
// snapshot. It either completes all six stages or fails with exactly one of
// the typed conditions in errors.go.
func (e *Engine) Suggest(ctx context.Context, req SuggestRequest, snap *repertory.Snapshot) (*SuggestResponse, error) {
	if snap.Empty() {
		return nil, ErrReferenceDataUnavailable
	}

	nc, err := NormalizeCase(req.Case, e.rules)
	if err != nil {
		return nil, err
	}

	rubrics := snap.RubricsFor(req.RepertorySource)

	var matches []MatchResult
	for _, sym := range nc.Symptoms() {
		matches = append(matches, MatchSymptom(sym, rubrics, e.rules)...)
	}

	pool, maxGrade := AggregatePool(matches, snap, e.rules)
	ScorePool(pool, nc, snap, maxGrade, e.rules)
	ApplySafetyWarnings(ctx, pool, nc, snap, e.rules, e.history, req.PatientID)
	suggestions := RankSuggestions(pool, nc, snap, e.rules)

	if len(suggestions) == 0 {
		return nil, ErrNoMatches
	}

	summary := Summary{TotalRemedies: len(pool)}
	for _, s := range suggestions {
		if s.Confidence == TierHigh || s.Confidence == TierVeryHigh {
			summary.HighConfidence++
		}
		summary.Warnings += len(s.Warnings)
	}

	return &SuggestResponse{
		TopRemedies: suggestions,
		Summary:     summary,
	}, nil
}
