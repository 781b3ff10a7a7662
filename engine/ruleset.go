package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Ruleset holds every clinical tuning value the pipeline consults. The
// numbers are configuration, not code: deployments overlay them from a JSON
// file so clinicians can retune matching and scoring without a redeploy.
type Ruleset struct {
	// Category default weights applied when a symptom carries none.
	DefaultWeights map[Category]float64 `json:"defaultWeights"`
	// Upper clamp for caller-supplied weights.
	MaxSymptomWeight float64 `json:"maxSymptomWeight"`

	// Monotone confidence multipliers keyed exact/high/medium/low.
	ConfidenceWeights map[string]float64 `json:"confidenceWeights"`

	// Token-overlap thresholds for fuzzy rubric matching.
	MediumOverlap float64 `json:"mediumOverlap"`
	LowOverlap    float64 `json:"lowOverlap"`

	// Pathology-tag bonus added per matching clinical indication, and its cap.
	PathologyBonus    float64 `json:"pathologyBonus"`
	PathologyBonusCap float64 `json:"pathologyBonusCap"`

	// Candidates below MinScore are dropped before ranking.
	MinScore float64 `json:"minScore"`
	// Both remedies must score at least this for an incompatibility warning.
	IncompatibilityThreshold float64 `json:"incompatibilityThreshold"`

	// Confidence tier cutoffs on the 0..100 score.
	TierVeryHigh float64 `json:"tierVeryHigh"`
	TierHigh     float64 `json:"tierHigh"`
	TierMedium   float64 `json:"tierMedium"`

	// Maximum number of suggestions returned.
	TopN int `json:"topN"`

	// Pathology tags matching this pattern mark the case chronic even without
	// the literal "chronic" tag.
	ChronicTagPattern string `json:"chronicTagPattern"`

	// Repetition decision table keyed "<state>/<category>" where state is
	// acute, chronic, acute+chronic or none, and category may be "any".
	RepetitionRules   map[string]string `json:"repetitionRules"`
	DefaultRepetition string            `json:"defaultRepetition"`

	// How far back the repetition warning looks for unfavorable outcomes.
	RecencyWindowDays int `json:"recencyWindowDays"`

	chronicRe *regexp.Regexp
}

// DefaultRuleset returns the built-in tuning values.
func DefaultRuleset() *Ruleset {
	rs := &Ruleset{
		DefaultWeights: map[Category]float64{
			CategoryMental:     3,
			CategoryGeneral:    2,
			CategoryParticular: 1,
			CategoryModality:   1.5,
		},
		MaxSymptomWeight: 10,
		ConfidenceWeights: map[string]float64{
			"exact":  1.0,
			"high":   0.8,
			"medium": 0.5,
			"low":    0.25,
		},
		MediumOverlap:            0.5,
		LowOverlap:               0.25,
		PathologyBonus:           5,
		PathologyBonusCap:        15,
		MinScore:                 0,
		IncompatibilityThreshold: 40,
		TierVeryHigh:             85,
		TierHigh:                 65,
		TierMedium:               40,
		TopN:                     10,
		ChronicTagPattern:        `(?i)\b(?:\d+\s*(?:months?|years?)|recurrent|long[- ]?standing)\b`,
		RepetitionRules: map[string]string{
			"acute/mental":      "every 2 hours until improvement",
			"acute/general":     "every 3 hours",
			"acute/particular":  "every 4 hours",
			"acute/modality":    "every 4 hours",
			"chronic/mental":    "once daily at bedtime",
			"chronic/any":       "once daily",
			"acute+chronic/any": "three times daily",
		},
		DefaultRepetition: "twice daily",
		RecencyWindowDays: 90,
	}
	rs.chronicRe = regexp.MustCompile(rs.ChronicTagPattern)
	return rs
}

// LoadRuleset returns the defaults overlaid with the JSON file at path.
// An empty path returns the defaults unchanged.
func LoadRuleset(path string) (*Ruleset, error) {
	rs := DefaultRuleset()
	if path == "" {
		return rs, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset file: %w", err)
	}
	if err := json.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("decoding ruleset file: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ruleset: %w", err)
	}
	return rs, nil
}

// Validate checks the ruleset for values the pipeline cannot work with and
// recompiles the chronic tag pattern.
func (rs *Ruleset) Validate() error {
	for _, cat := range Categories {
		if w, ok := rs.DefaultWeights[cat]; !ok || w <= 0 {
			return fmt.Errorf("default weight for category %s must be positive", cat)
		}
	}
	for _, name := range []string{"exact", "high", "medium", "low"} {
		if w, ok := rs.ConfidenceWeights[name]; !ok || w <= 0 || w > 1 {
			return fmt.Errorf("confidence weight %s must be in (0,1]", name)
		}
	}
	if rs.LowOverlap <= 0 || rs.MediumOverlap <= rs.LowOverlap || rs.MediumOverlap > 1 {
		return fmt.Errorf("overlap thresholds must satisfy 0 < low < medium <= 1")
	}
	if rs.TopN <= 0 {
		return fmt.Errorf("topN must be positive")
	}
	if rs.MaxSymptomWeight <= 0 {
		return fmt.Errorf("maxSymptomWeight must be positive")
	}
	if !(rs.TierMedium < rs.TierHigh && rs.TierHigh < rs.TierVeryHigh) {
		return fmt.Errorf("tier cutoffs must be strictly increasing")
	}

	re, err := regexp.Compile(rs.ChronicTagPattern)
	if err != nil {
		return fmt.Errorf("chronicTagPattern: %w", err)
	}
	rs.chronicRe = re
	return nil
}

// ConfidenceWeight returns the multiplier for a match confidence.
func (rs *Ruleset) ConfidenceWeight(c MatchConfidence) float64 {
	return rs.ConfidenceWeights[c.String()]
}

// TierFor maps a 0..100 score to its confidence tier.
func (rs *Ruleset) TierFor(score float64) ConfidenceTier {
	switch {
	case score >= rs.TierVeryHigh:
		return TierVeryHigh
	case score >= rs.TierHigh:
		return TierHigh
	case score >= rs.TierMedium:
		return TierMedium
	default:
		return TierLow
	}
}

// RepetitionFor resolves the repetition schedule for a case state and its
// dominant symptom category, most specific rule first.
func (rs *Ruleset) RepetitionFor(isAcute, isChronic bool, top Category) (string, bool) {
	state := "none"
	switch {
	case isAcute && isChronic:
		state = "acute+chronic"
	case isAcute:
		state = "acute"
	case isChronic:
		state = "chronic"
	}

	if rep, ok := rs.RepetitionRules[state+"/"+string(top)]; ok {
		return rep, true
	}
	if rep, ok := rs.RepetitionRules[state+"/any"]; ok {
		return rep, true
	}
	return rs.DefaultRepetition, false
}

// MatchesChronicPattern reports whether a pathology tag implies chronicity.
func (rs *Ruleset) MatchesChronicPattern(tag string) bool {
	return rs.chronicRe != nil && rs.chronicRe.MatchString(tag)
}

// RecencyWindow returns the repetition warning lookback as a duration.
func (rs *Ruleset) RecencyWindow() int {
	return rs.RecencyWindowDays
}
