package engine

import (
	"github.com/clinicore/remedy-api/repertory"
)

// WarningType classifies a clinical safety warning.
type WarningType string

const (
	WarningContradiction   WarningType = "contradiction"
	WarningIncompatibility WarningType = "incompatibility"
	WarningRepetition      WarningType = "repetition"
)

// Warning is an advisory attached to a candidate; it never removes one.
type Warning struct {
	Type    WarningType `json:"type"`
	Message string      `json:"message"`
}

// ProvenanceEntry records one contribution to a remedy's score: the match
// that produced it, the rubric's grade for the remedy, and the resulting
// score contribution. Carrying these through every stage is what makes the
// final reasoning reconstructible without re-running the pipeline.
type ProvenanceEntry struct {
	Match        MatchResult
	Grade        int
	Contribution float64
}

// RemedyCandidate accumulates a remedy's evidence across all matched rubrics.
type RemedyCandidate struct {
	RemedyID   string
	Provenance []ProvenanceEntry
	RawScore   float64
	MatchScore float64
	Warnings   []Warning
}

// AggregatePool unions the remedies referenced by all matched rubrics.
// Each (remedy, grade) pair of a matched rubric contributes
// grade x confidenceWeight x symptomWeight to that remedy's raw score.
// Returns the pool and the maximum grade observed among matched rubrics,
// which the scorer needs for normalization. Remedies with no contributing
// match never enter the pool.
func AggregatePool(matches []MatchResult, snap *repertory.Snapshot, rules *Ruleset) (map[string]*RemedyCandidate, int) {
	pool := make(map[string]*RemedyCandidate)
	maxGrade := 0

	for _, m := range matches {
		rubric, ok := snap.RubricsByID[m.RubricID]
		if !ok {
			continue
		}

		confWeight := rules.ConfidenceWeight(m.Confidence)
		for remedyID, grade := range rubric.RemedyGrades {
			if grade > maxGrade {
				maxGrade = grade
			}

			cand, exists := pool[remedyID]
			if !exists {
				cand = &RemedyCandidate{RemedyID: remedyID}
				pool[remedyID] = cand
			}

			contribution := float64(grade) * confWeight * m.Symptom.Weight
			cand.Provenance = append(cand.Provenance, ProvenanceEntry{
				Match:        m,
				Grade:        grade,
				Contribution: contribution,
			})
			cand.RawScore += contribution
		}
	}

	return pool, maxGrade
}
