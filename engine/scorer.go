package engine

import (
	"math"

	"github.com/clinicore/remedy-api/repertory"
)

// ScorePool normalizes every candidate's raw score to the 0..100 range.
//
// The denominator is the best score theoretically achievable for this case:
// every symptom matching with exact confidence against the highest grade
// observed. Normalizing against it keeps scores comparable across cases with
// different symptom counts. A pathology-tag bonus is added afterwards, capped,
// and the result clamped to [0,100]. No randomness, no clock: identical
// inputs always produce identical scores.
func ScorePool(pool map[string]*RemedyCandidate, nc *NormalizedCase, snap *repertory.Snapshot, maxGradeObserved int, rules *Ruleset) {
	if len(pool) == 0 || maxGradeObserved == 0 {
		return
	}

	theoreticalMax := nc.TotalWeight() * rules.ConfidenceWeight(MatchExact) * float64(maxGradeObserved)
	if theoreticalMax <= 0 {
		return
	}

	for _, cand := range pool {
		score := cand.RawScore / theoreticalMax * 100

		score += pathologyBonus(cand.RemedyID, nc.PathologyTags, snap, rules)

		cand.MatchScore = math.Round(clamp(score, 0, 100)*100) / 100
	}
}

// pathologyBonus grants a fixed bonus per pathology tag found among the
// remedy's clinical indication tokens, up to the configured cap.
func pathologyBonus(remedyID string, tags []string, snap *repertory.Snapshot, rules *Ruleset) float64 {
	remedy, ok := snap.RemediesByID[remedyID]
	if !ok || len(remedy.IndicationTokens) == 0 {
		return 0
	}

	var bonus float64
	for _, tag := range tags {
		if _, hit := remedy.IndicationTokens[tag]; hit {
			bonus += rules.PathologyBonus
		}
	}
	return math.Min(bonus, rules.PathologyBonusCap)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
