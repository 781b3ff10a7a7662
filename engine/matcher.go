package engine

import (
	"sort"

	"github.com/clinicore/remedy-api/repertory/entities"
	"github.com/clinicore/remedy-api/textnorm"
)

// MatchConfidence is the ordinal confidence of a symptom-to-rubric match.
type MatchConfidence int

const (
	MatchLow MatchConfidence = iota + 1
	MatchMedium
	MatchHigh
	MatchExact
)

func (c MatchConfidence) String() string {
	switch c {
	case MatchExact:
		return "exact"
	case MatchHigh:
		return "high"
	case MatchMedium:
		return "medium"
	case MatchLow:
		return "low"
	default:
		return "none"
	}
}

// MatchResult records one symptom-to-rubric match with its confidence.
type MatchResult struct {
	Symptom     SymptomEntry
	RubricID    string
	RubricText  string
	Confidence  MatchConfidence
	MatchedText string

	rubricGradeSum int
}

// MatchSymptom finds every rubric the symptom matches, best confidence
// first. A symptom matching nothing returns an empty slice: it simply
// contributes nothing to scoring, which is not a failure of the case.
func MatchSymptom(sym SymptomEntry, rubrics []entities.Rubric, rules *Ruleset) []MatchResult {
	var results []MatchResult

	for i := range rubrics {
		rubric := &rubrics[i]
		conf := classifyMatch(sym, rubric, rules)
		if conf == 0 {
			continue
		}

		// Location and sensation context on particulars can raise the
		// confidence one tier, never lower it, capped at exact.
		if sym.Category == CategoryParticular && conf < MatchExact && contextMatches(sym, rubric) {
			conf++
		}

		results = append(results, MatchResult{
			Symptom:        sym,
			RubricID:       rubric.ID,
			RubricText:     rubric.Text,
			Confidence:     conf,
			MatchedText:    rubric.SearchText,
			rubricGradeSum: rubric.GradeSum,
		})
	}

	// Identical confidences prefer the rubric with broader clinical
	// consensus (higher grade sum), then lexicographic id for determinism.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.rubricGradeSum != b.rubricGradeSum {
			return a.rubricGradeSum > b.rubricGradeSum
		}
		return a.RubricID < b.RubricID
	})

	return results
}

func classifyMatch(sym SymptomEntry, rubric *entities.Rubric, rules *Ruleset) MatchConfidence {
	if sym.Folded == "" || rubric.SearchText == "" {
		return 0
	}

	if sym.Folded == rubric.SearchText {
		return MatchExact
	}

	if textnorm.ContainsWholeWord(rubric.SearchText, sym.Folded) ||
		textnorm.ContainsWholeWord(sym.Folded, rubric.SearchText) {
		return MatchHigh
	}

	ratio := textnorm.OverlapRatio(sym.Tokens, rubric.Tokens)
	switch {
	case ratio >= rules.MediumOverlap:
		return MatchMedium
	case ratio >= rules.LowOverlap:
		return MatchLow
	default:
		return 0
	}
}

// contextMatches reports whether a particular's location or sensation
// appears among the rubric's significant tokens.
func contextMatches(sym SymptomEntry, rubric *entities.Rubric) bool {
	for _, ctx := range []string{sym.FoldedLocation, sym.FoldedSensation} {
		if ctx == "" {
			continue
		}
		for tok := range textnorm.SignificantTokens(ctx) {
			if _, ok := rubric.Tokens[tok]; ok {
				return true
			}
		}
	}
	return false
}
