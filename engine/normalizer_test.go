package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNormalizeDefaultWeights(t *testing.T) {
	rules := DefaultRuleset()

	in := CaseInput{
		Mental:      []SymptomInput{{SymptomText: "fear of death"}},
		Generals:    []SymptomInput{{SymptomText: "chilly"}},
		Particulars: []SymptomInput{{SymptomText: "burning stomach"}},
		Modalities:  []SymptomInput{{SymptomText: "warmth", Type: "better"}},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"mental", nc.Mental[0].Weight, 3},
		{"general", nc.Generals[0].Weight, 2},
		{"particular", nc.Particulars[0].Weight, 1},
		{"modality", nc.Modalities[0].Weight, 1.5},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s default weight = %v, want %v", tt.name, tt.got, tt.expected)
		}
	}

	if nc.TotalWeight() != 7.5 {
		t.Errorf("TotalWeight = %v, want 7.5", nc.TotalWeight())
	}
}

func TestNormalizeExplicitWeightClamped(t *testing.T) {
	rules := DefaultRuleset()

	in := CaseInput{
		Mental: []SymptomInput{{SymptomText: "fear of death", Weight: weight(50)}},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	if nc.Mental[0].Weight != rules.MaxSymptomWeight {
		t.Errorf("weight = %v, want clamp to %v", nc.Mental[0].Weight, rules.MaxSymptomWeight)
	}
}

func TestNormalizeInvalidWeights(t *testing.T) {
	rules := DefaultRuleset()

	for _, w := range []float64{0, -3, math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := CaseInput{
			Mental: []SymptomInput{{SymptomText: "fear of death", Weight: weight(w)}},
		}

		_, err := NormalizeCase(in, rules)

		var weightErr *InvalidWeightError
		if !errors.As(err, &weightErr) {
			t.Errorf("weight %v: expected InvalidWeightError, got %v", w, err)
		}
	}
}

func TestNormalizeDedupeKeepsMaxWeight(t *testing.T) {
	rules := DefaultRuleset()

	in := CaseInput{
		Mental: []SymptomInput{
			{SymptomText: "Fear of death", Weight: weight(2)},
			{SymptomText: "fear  of DEATH", Weight: weight(5)},
			{SymptomText: "féar of death", Weight: weight(3)},
		},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	if len(nc.Mental) != 1 {
		t.Fatalf("expected 1 deduplicated symptom, got %d", len(nc.Mental))
	}
	if nc.Mental[0].Weight != 5 {
		t.Errorf("dedupe should keep max weight, got %v", nc.Mental[0].Weight)
	}
	// The displayed text keeps the first occurrence as typed.
	if nc.Mental[0].Text != "Fear of death" {
		t.Errorf("dedupe should keep first text, got %q", nc.Mental[0].Text)
	}
}

func TestNormalizeParticularsKeepDistinctContext(t *testing.T) {
	rules := DefaultRuleset()

	// Same text with different locations is two different symptoms.
	in := CaseInput{
		Particulars: []SymptomInput{
			{SymptomText: "burning pain", Location: "stomach"},
			{SymptomText: "burning pain", Location: "throat"},
		},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	if len(nc.Particulars) != 2 {
		t.Errorf("expected 2 particulars, got %d", len(nc.Particulars))
	}
}

func TestNormalizeContextOnlyOnParticulars(t *testing.T) {
	rules := DefaultRuleset()

	in := CaseInput{
		Mental:      []SymptomInput{{SymptomText: "anxiety", Location: "head", Sensation: "pressure"}},
		Particulars: []SymptomInput{{SymptomText: "pain", Location: "Knee", Sensation: "Stitching"}},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	if nc.Mental[0].Location != "" || nc.Mental[0].Sensation != "" {
		t.Error("location and sensation must be ignored outside particulars")
	}
	if nc.Particulars[0].FoldedLocation != "knee" {
		t.Errorf("FoldedLocation = %q, want %q", nc.Particulars[0].FoldedLocation, "knee")
	}
	if nc.Particulars[0].FoldedSensation != "stitching" {
		t.Errorf("FoldedSensation = %q, want %q", nc.Particulars[0].FoldedSensation, "stitching")
	}
}

func TestNormalizeModalityType(t *testing.T) {
	rules := DefaultRuleset()

	in := CaseInput{
		Modalities: []SymptomInput{
			{SymptomText: "motion", Type: "Better"},
			{SymptomText: "cold air", Type: "WORSE"},
			{SymptomText: "rest", Type: "unknown"},
		},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	if nc.Modalities[0].Modality != ModalityBetter {
		t.Errorf("expected better, got %q", nc.Modalities[0].Modality)
	}
	if nc.Modalities[1].Modality != ModalityWorse {
		t.Errorf("expected worse, got %q", nc.Modalities[1].Modality)
	}
	if nc.Modalities[2].Modality != "" {
		t.Errorf("unrecognized type should stay empty, got %q", nc.Modalities[2].Modality)
	}
}

func TestNormalizeTags(t *testing.T) {
	rules := DefaultRuleset()

	in := CaseInput{
		Mental:        []SymptomInput{{SymptomText: "anxiety"}},
		PathologyTags: []string{"Asthma", "asthma", "  ", "Gastrite Chronique", "bronchitis"},
	}

	nc, err := NormalizeCase(in, rules)
	if err != nil {
		t.Fatalf("NormalizeCase failed: %v", err)
	}

	expected := []string{"asthma", "bronchitis", "gastrite chronique"}
	if !reflect.DeepEqual(nc.PathologyTags, expected) {
		t.Errorf("tags = %v, want %v", nc.PathologyTags, expected)
	}
}

func TestNormalizeAcuteChronicFlags(t *testing.T) {
	rules := DefaultRuleset()

	tests := []struct {
		name    string
		tags    []string
		acute   bool
		chronic bool
	}{
		{"no tags", nil, false, false},
		{"acute literal", []string{"acute"}, true, false},
		{"chronic literal", []string{"chronic"}, false, true},
		{"both", []string{"acute", "chronic"}, true, true},
		{"chronic by duration", []string{"asthma 3 years"}, false, true},
		{"chronic by recurrence", []string{"recurrent bronchitis"}, false, true},
		{"chronic by long-standing", []string{"long-standing eczema"}, false, true},
		{"plain pathology", []string{"asthma"}, false, false},
		// "acute" embedded in a longer tag is not the acute marker.
		{"acute substring", []string{"acute bronchitis history"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CaseInput{
				Mental:        []SymptomInput{{SymptomText: "anxiety"}},
				PathologyTags: tt.tags,
			}

			nc, err := NormalizeCase(in, rules)
			if err != nil {
				t.Fatalf("NormalizeCase failed: %v", err)
			}

			if nc.IsAcute != tt.acute {
				t.Errorf("IsAcute = %v, want %v", nc.IsAcute, tt.acute)
			}
			if nc.IsChronic != tt.chronic {
				t.Errorf("IsChronic = %v, want %v", nc.IsChronic, tt.chronic)
			}
		})
	}
}

func TestTopCategory(t *testing.T) {
	rules := DefaultRuleset()

	tests := []struct {
		name     string
		in       CaseInput
		expected Category
	}{
		{
			"mental dominates",
			CaseInput{
				Mental:      []SymptomInput{{SymptomText: "fear"}, {SymptomText: "anger"}},
				Particulars: []SymptomInput{{SymptomText: "pain"}},
			},
			CategoryMental,
		},
		{
			"particulars by volume",
			CaseInput{
				Mental: []SymptomInput{{SymptomText: "fear"}},
				Particulars: []SymptomInput{
					{SymptomText: "pain a", Weight: weight(2)},
					{SymptomText: "pain b", Weight: weight(2)},
				},
			},
			CategoryParticular,
		},
		{
			// 3 vs 3: canonical order prefers mental.
			"tie resolves canonically",
			CaseInput{
				Mental:      []SymptomInput{{SymptomText: "fear"}},
				Particulars: []SymptomInput{{SymptomText: "pain", Weight: weight(3)}},
			},
			CategoryMental,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc, err := NormalizeCase(tt.in, rules)
			if err != nil {
				t.Fatalf("NormalizeCase failed: %v", err)
			}
			if got := nc.TopCategory(); got != tt.expected {
				t.Errorf("TopCategory = %s, want %s", got, tt.expected)
			}
		})
	}
}
