package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicore/remedy-api/interfaces"
)

type stubHistory struct {
	decisions []interfaces.CaseDecision
	err       error
	calls     int
}

func (s *stubHistory) RecentUnfavorable(_ context.Context, _ string, _ time.Duration) ([]interfaces.CaseDecision, error) {
	s.calls++
	return s.decisions, s.err
}

// runPipeline runs normalize through score so safety tests start from a
// realistically annotated pool.
func runPipeline(t *testing.T, in CaseInput) (map[string]*RemedyCandidate, *NormalizedCase) {
	t.Helper()
	rules := DefaultRuleset()
	snap := testSnapshot()

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	var matches []MatchResult
	for _, sym := range nc.Symptoms() {
		matches = append(matches, MatchSymptom(sym, snap.Rubrics, rules)...)
	}

	pool, maxGrade := AggregatePool(matches, snap, rules)
	ScorePool(pool, nc, snap, maxGrade, rules)
	return pool, nc
}

func warningsOfType(cand *RemedyCandidate, wt WarningType) []Warning {
	var out []Warning
	for _, w := range cand.Warnings {
		if w.Type == wt {
			out = append(out, w)
		}
	}
	return out
}

func TestContradictionWarning(t *testing.T) {
	pool, nc := runPipeline(t, CaseInput{
		Mental:        []SymptomInput{{SymptomText: "fear of death"}},
		PathologyTags: []string{"dehydration"},
	})

	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), DefaultRuleset(), nil, "")

	// ars lists dehydration as a counter-indication.
	if got := warningsOfType(pool["ars"], WarningContradiction); len(got) != 1 {
		t.Errorf("expected 1 contradiction warning on ars, got %d", len(got))
	}
	if got := warningsOfType(pool["acon"], WarningContradiction); len(got) != 0 {
		t.Errorf("expected no contradiction warning on acon, got %d", len(got))
	}

	// The flagged candidate stays in the pool with its score untouched.
	if pool["ars"].MatchScore == 0 {
		t.Error("warning must not zero the score")
	}
}

func TestIncompatibilityWarning(t *testing.T) {
	// Burning stomach pain puts both ars and phos in the pool with exact
	// matches well above the threshold.
	pool, nc := runPipeline(t, CaseInput{
		Particulars: []SymptomInput{{SymptomText: "burning pain in stomach", Weight: weight(3)}},
	})

	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), DefaultRuleset(), nil, "")

	if got := warningsOfType(pool["ars"], WarningIncompatibility); len(got) != 1 {
		t.Errorf("expected 1 incompatibility warning on ars, got %d: %+v", len(got), pool["ars"].Warnings)
	}
}

func TestIncompatibilityBelowThresholdIgnored(t *testing.T) {
	rules := DefaultRuleset()
	rules.IncompatibilityThreshold = 99.5

	pool, nc := runPipeline(t, CaseInput{
		Particulars: []SymptomInput{{SymptomText: "burning pain in stomach", Weight: weight(3)}},
	})

	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), rules, nil, "")

	// phos scores 66.67, below the raised threshold, so no warning fires.
	if got := warningsOfType(pool["ars"], WarningIncompatibility); len(got) != 0 {
		t.Errorf("expected no incompatibility warning, got %d", len(got))
	}
}

func TestRepetitionWarning(t *testing.T) {
	history := &stubHistory{
		decisions: []interfaces.CaseDecision{
			{
				CaseID:    "case-1",
				PatientID: "patient-7",
				RemedyID:  "acon",
				Outcome:   "unfavorable",
				DecidedAt: time.Now().Add(-10 * 24 * time.Hour),
			},
		},
	}

	pool, nc := runPipeline(t, CaseInput{
		Mental: []SymptomInput{{SymptomText: "fear of death"}},
	})

	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), DefaultRuleset(), history, "patient-7")

	if history.calls != 1 {
		t.Errorf("expected one history lookup, got %d", history.calls)
	}
	if got := warningsOfType(pool["acon"], WarningRepetition); len(got) != 1 {
		t.Errorf("expected 1 repetition warning on acon, got %d", len(got))
	}
	if got := warningsOfType(pool["ars"], WarningRepetition); len(got) != 0 {
		t.Errorf("expected no repetition warning on ars, got %d", len(got))
	}
}

func TestRepetitionSkippedWithoutPatient(t *testing.T) {
	history := &stubHistory{}

	pool, nc := runPipeline(t, CaseInput{
		Mental: []SymptomInput{{SymptomText: "fear of death"}},
	})

	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), DefaultRuleset(), history, "")

	if history.calls != 0 {
		t.Errorf("history must not be queried without a patient id, got %d calls", history.calls)
	}
}

func TestHistoryFailureIsAdvisory(t *testing.T) {
	history := &stubHistory{err: errors.New("database down")}

	pool, nc := runPipeline(t, CaseInput{
		Mental: []SymptomInput{{SymptomText: "fear of death"}},
	})

	// Must not panic or attach warnings; the run simply loses the
	// advisory check.
	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), DefaultRuleset(), history, "patient-7")

	for id, cand := range pool {
		if len(warningsOfType(cand, WarningRepetition)) != 0 {
			t.Errorf("%s should have no repetition warning after lookup failure", id)
		}
	}
}

func TestWarningsNeverRemoveCandidates(t *testing.T) {
	pool, nc := runPipeline(t, CaseInput{
		Particulars:   []SymptomInput{{SymptomText: "burning pain in stomach", Weight: weight(3)}},
		PathologyTags: []string{"dehydration"},
	})

	before := len(pool)
	ApplySafetyWarnings(context.Background(), pool, nc, testSnapshot(), DefaultRuleset(), nil, "")

	if len(pool) != before {
		t.Errorf("safety pass changed pool size: %d -> %d", before, len(pool))
	}
}
