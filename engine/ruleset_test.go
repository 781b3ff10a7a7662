package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRulesetValid(t *testing.T) {
	if err := DefaultRuleset().Validate(); err != nil {
		t.Fatalf("default ruleset must validate: %v", err)
	}
}

func TestLoadRulesetOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")

	overlay := `{"topN": 3, "minScore": 25, "tierVeryHigh": 90}`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}

	rules, err := LoadRuleset(path)
	if err != nil {
		t.Fatalf("LoadRuleset failed: %v", err)
	}

	if rules.TopN != 3 {
		t.Errorf("TopN = %d, want 3", rules.TopN)
	}
	if rules.MinScore != 25 {
		t.Errorf("MinScore = %v, want 25", rules.MinScore)
	}
	if rules.TierVeryHigh != 90 {
		t.Errorf("TierVeryHigh = %v, want 90", rules.TierVeryHigh)
	}
	// Untouched values keep their defaults.
	if rules.TierHigh != 65 {
		t.Errorf("TierHigh = %v, want default 65", rules.TierHigh)
	}
	if rules.DefaultWeights[CategoryMental] != 3 {
		t.Errorf("mental default weight = %v, want 3", rules.DefaultWeights[CategoryMental])
	}
}

func TestLoadRulesetEmptyPath(t *testing.T) {
	rules, err := LoadRuleset("")
	if err != nil {
		t.Fatalf("LoadRuleset(\"\") failed: %v", err)
	}
	if rules.TopN != DefaultRuleset().TopN {
		t.Error("empty path should return defaults")
	}
}

func TestLoadRulesetRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		overlay string
	}{
		{"zero topN", `{"topN": 0}`},
		{"bad tiers", `{"tierVeryHigh": 10, "tierHigh": 65}`},
		{"bad overlap order", `{"mediumOverlap": 0.1, "lowOverlap": 0.5}`},
		{"bad regex", `{"chronicTagPattern": "(["}`},
		{"not json", `topN: 3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatalf("writing overlay: %v", err)
			}
			if _, err := LoadRuleset(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadRulesetMissingFile(t *testing.T) {
	if _, err := LoadRuleset("/nonexistent/rules.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTierFor(t *testing.T) {
	rules := DefaultRuleset()

	tests := []struct {
		score    float64
		expected ConfidenceTier
	}{
		{100, TierVeryHigh},
		{85, TierVeryHigh},
		{84.99, TierHigh},
		{65, TierHigh},
		{64.99, TierMedium},
		{40, TierMedium},
		{39.99, TierLow},
		{0, TierLow},
	}

	for _, tt := range tests {
		if got := rules.TierFor(tt.score); got != tt.expected {
			t.Errorf("TierFor(%v) = %s, want %s", tt.score, got, tt.expected)
		}
	}
}

func TestConfidenceWeightsMonotone(t *testing.T) {
	rules := DefaultRuleset()

	order := []MatchConfidence{MatchLow, MatchMedium, MatchHigh, MatchExact}
	for i := 1; i < len(order); i++ {
		lower := rules.ConfidenceWeight(order[i-1])
		higher := rules.ConfidenceWeight(order[i])
		if higher <= lower {
			t.Errorf("confidence weights must increase: %s=%v vs %s=%v",
				order[i-1], lower, order[i], higher)
		}
	}
}
