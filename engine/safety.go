package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clinicore/remedy-api/interfaces"
	"github.com/clinicore/remedy-api/repertory"
	"github.com/clinicore/remedy-api/textnorm"
)

// HistoryProvider supplies previously recorded doctor decisions for the
// advisory repetition warning. Implemented by the records repository; nil
// disables the check.
type HistoryProvider interface {
	RecentUnfavorable(ctx context.Context, patientID string, window time.Duration) ([]interfaces.CaseDecision, error)
}

// ApplySafetyWarnings annotates scored candidates with contradiction,
// incompatibility and repetition warnings. The filter never removes a
// candidate: the clinician stays the final decision-maker, so a flagged
// remedy still ranks on its score.
func ApplySafetyWarnings(ctx context.Context, pool map[string]*RemedyCandidate, nc *NormalizedCase, snap *repertory.Snapshot, rules *Ruleset, history HistoryProvider, patientID string) {
	priors := recentUnfavorable(ctx, history, patientID, rules)

	// Candidates are processed in id order so warning text and ordering are
	// reproducible run to run.
	ids := make([]string, 0, len(pool))
	for id := range pool {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		cand := pool[id]
		remedy, ok := snap.RemediesByID[id]
		if !ok {
			continue
		}

		// Contradictions: pathology tags against the remedy's recorded
		// counter-indications. Skipped when the remedy declares none.
		for _, tag := range nc.PathologyTags {
			if _, hit := remedy.ContraTokens[tag]; hit {
				cand.Warnings = append(cand.Warnings, Warning{
					Type:    WarningContradiction,
					Message: fmt.Sprintf("pathology %q is a recorded counter-indication for %s", tag, remedy.Name),
				})
			}
		}

		// Incompatibilities: another pool member with a non-trivial score
		// that this remedy is declared incompatible with.
		for _, entry := range remedy.Incompatibilities {
			other := findPoolRemedy(entry, pool, snap)
			if other == nil || other.RemedyID == id {
				continue
			}
			if other.MatchScore < rules.IncompatibilityThreshold || cand.MatchScore < rules.IncompatibilityThreshold {
				continue
			}
			otherName := other.RemedyID
			if rem, ok := snap.RemediesByID[other.RemedyID]; ok {
				otherName = rem.Name
			}
			cand.Warnings = append(cand.Warnings, Warning{
				Type:    WarningIncompatibility,
				Message: fmt.Sprintf("%s is clinically incompatible with %s, which also matches this case", remedy.Name, otherName),
			})
		}

		// Repetition: advisory only, sourced from persisted decisions.
		for _, prior := range priors {
			if prior.RemedyID == id {
				cand.Warnings = append(cand.Warnings, Warning{
					Type:    WarningRepetition,
					Message: fmt.Sprintf("%s was prescribed for this patient on %s with an unfavorable outcome", remedy.Name, prior.DecidedAt.Format("2006-01-02")),
				})
			}
		}
	}
}

// findPoolRemedy resolves an incompatibility entry, which may reference a
// remedy id or name, to a pool candidate.
func findPoolRemedy(entry string, pool map[string]*RemedyCandidate, snap *repertory.Snapshot) *RemedyCandidate {
	if cand, ok := pool[entry]; ok {
		return cand
	}

	folded := textnorm.Fold(entry)
	for id, cand := range pool {
		remedy, ok := snap.RemediesByID[id]
		if !ok {
			continue
		}
		if textnorm.Fold(remedy.Name) == folded || id == folded {
			return cand
		}
	}
	return nil
}

func recentUnfavorable(ctx context.Context, history HistoryProvider, patientID string, rules *Ruleset) []interfaces.CaseDecision {
	if history == nil || patientID == "" {
		return nil
	}

	window := time.Duration(rules.RecencyWindowDays) * 24 * time.Hour
	priors, err := history.RecentUnfavorable(ctx, patientID, window)
	if err != nil {
		// The warning is advisory; a history lookup failure must not fail
		// the suggestion run.
		return nil
	}
	return priors
}
