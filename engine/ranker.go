package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clinicore/remedy-api/repertory"
	"github.com/clinicore/remedy-api/repertory/entities"
)

// ConfidenceTier is the coarse clinician-facing bucket for a match score.
type ConfidenceTier string

const (
	TierLow      ConfidenceTier = "low"
	TierMedium   ConfidenceTier = "medium"
	TierHigh     ConfidenceTier = "high"
	TierVeryHigh ConfidenceTier = "very_high"
)

// RemedySuggestion is one ranked, explainable suggestion.
type RemedySuggestion struct {
	RemedyID          string         `json:"remedyId"`
	RemedyName        string         `json:"remedyName"`
	MatchScore        float64        `json:"matchScore"`
	Confidence        ConfidenceTier `json:"confidence"`
	SuggestedPotency  string         `json:"suggestedPotency,omitempty"`
	Repetition        string         `json:"repetition"`
	ClinicalReasoning string         `json:"clinicalReasoning"`
	Warnings          []Warning      `json:"warnings"`
}

// RankSuggestions sorts the annotated candidates, derives potency and
// repetition, builds the reasoning string and truncates to the configured
// top-N. Candidates are only ever excluded here by the minimum-score check
// and the top-N cutoff, never by their warnings.
func RankSuggestions(pool map[string]*RemedyCandidate, nc *NormalizedCase, snap *repertory.Snapshot, rules *Ruleset) []RemedySuggestion {
	ranked := make([]*RemedyCandidate, 0, len(pool))
	for _, cand := range pool {
		if cand.MatchScore < rules.MinScore || cand.RawScore <= 0 {
			continue
		}
		ranked = append(ranked, cand)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if ea, eb := exactCount(a), exactCount(b); ea != eb {
			return ea > eb
		}
		if len(a.Warnings) != len(b.Warnings) {
			return len(a.Warnings) < len(b.Warnings)
		}
		return remedyName(a.RemedyID, snap) < remedyName(b.RemedyID, snap)
	})

	if len(ranked) > rules.TopN {
		ranked = ranked[:rules.TopN]
	}

	topCategory := nc.TopCategory()
	suggestions := make([]RemedySuggestion, 0, len(ranked))
	for _, cand := range ranked {
		remedy, ok := snap.RemediesByID[cand.RemedyID]
		name := cand.RemedyID
		if ok {
			name = remedy.Name
		}

		warnings := cand.Warnings
		if warnings == nil {
			warnings = []Warning{}
		}

		suggestions = append(suggestions, RemedySuggestion{
			RemedyID:          cand.RemedyID,
			RemedyName:        name,
			MatchScore:        cand.MatchScore,
			Confidence:        rules.TierFor(cand.MatchScore),
			SuggestedPotency:  suggestPotency(remedy, nc),
			Repetition:        suggestRepetition(remedy, nc, topCategory, rules),
			ClinicalReasoning: buildReasoning(cand),
			Warnings:          warnings,
		})
	}

	return suggestions
}

func exactCount(cand *RemedyCandidate) int {
	n := 0
	for _, p := range cand.Provenance {
		if p.Match.Confidence == MatchExact {
			n++
		}
	}
	return n
}

func remedyName(id string, snap *repertory.Snapshot) string {
	if remedy, ok := snap.RemediesByID[id]; ok {
		return remedy.Name
	}
	return id
}

// suggestPotency picks from the remedy's ordered potency sequence: the lower
// third for purely acute cases, the upper third for chronic ones, the middle
// otherwise. A remedy without potencies yields none, which is not an error.
func suggestPotency(remedy entities.Remedy, nc *NormalizedCase) string {
	n := len(remedy.SupportedPotencies)
	if n == 0 {
		return ""
	}

	band := n / 3
	if band == 0 {
		band = 1
	}

	var segment []string
	switch {
	case nc.IsAcute && !nc.IsChronic:
		segment = remedy.SupportedPotencies[:band]
	case nc.IsChronic:
		segment = remedy.SupportedPotencies[n-band:]
	default:
		// With one or two potencies the bands cover the whole sequence and
		// no middle segment exists; take the middle element directly.
		if band >= n-band {
			return remedy.SupportedPotencies[n/2]
		}
		segment = remedy.SupportedPotencies[band : n-band]
	}

	return segment[len(segment)/2]
}

// suggestRepetition resolves the schedule from the decision table; when no
// rule matches, the remedy's own severity default wins over the global one.
func suggestRepetition(remedy entities.Remedy, nc *NormalizedCase, top Category, rules *Ruleset) string {
	rep, matched := rules.RepetitionFor(nc.IsAcute, nc.IsChronic, top)
	if matched {
		return rep
	}

	severity := "moderate"
	switch {
	case nc.IsAcute && !nc.IsChronic:
		severity = "acute"
	case nc.IsChronic:
		severity = "chronic"
	}
	if own, ok := remedy.RepetitionBySeverity[severity]; ok && own != "" {
		return own
	}

	return rep
}

// buildReasoning lists the top three provenance entries by contribution.
// Ordering ties resolve on rubric id then symptom text, so the string is
// identical across runs.
func buildReasoning(cand *RemedyCandidate) string {
	prov := make([]ProvenanceEntry, len(cand.Provenance))
	copy(prov, cand.Provenance)

	sort.Slice(prov, func(i, j int) bool {
		a, b := prov[i], prov[j]
		if a.Contribution != b.Contribution {
			return a.Contribution > b.Contribution
		}
		if a.Match.RubricID != b.Match.RubricID {
			return a.Match.RubricID < b.Match.RubricID
		}
		return a.Match.Symptom.Text < b.Match.Symptom.Text
	})

	if len(prov) > 3 {
		prov = prov[:3]
	}

	parts := make([]string, 0, len(prov))
	for _, p := range prov {
		parts = append(parts, fmt.Sprintf("%s matched rubric %q with %s confidence",
			p.Match.Symptom.Text, p.Match.RubricText, p.Match.Confidence))
	}

	return strings.Join(parts, "; ")
}
