package validation

import (
	"strings"
	"testing"

	"github.com/clinicore/remedy-api/engine"
)

func TestValidateText(t *testing.T) {
	v := NewRequestValidator()

	valid := []string{
		"Fear of death",
		"Céphalée frontale, pulsatile",
		"burning pain (stomach region)",
		"worse 3-4 a.m.",
		"anxiety + restlessness",
		"",
		"   ",
	}
	for _, input := range valid {
		if err := v.ValidateText("symptomText", input); err != nil {
			t.Errorf("ValidateText(%q) = %v, want nil", input, err)
		}
	}

	invalid := []string{
		"<script>alert(1)</script>",
		"javascript:void(0)",
		"'; drop table cases; --",
		"a' or '1'='1",
		"../../../etc/passwd",
		"${jndi:ldap://x}",
		"fear `of` death",
		strings.Repeat("a", 201),
	}
	for _, input := range invalid {
		if err := v.ValidateText("symptomText", input); err == nil {
			t.Errorf("ValidateText(%q) should fail", input)
		}
	}
}

func TestValidateTag(t *testing.T) {
	v := NewRequestValidator()

	if err := v.ValidateTag("chronic asthma"); err != nil {
		t.Errorf("valid tag rejected: %v", err)
	}
	if err := v.ValidateTag(""); err != nil {
		t.Errorf("empty tag should pass: %v", err)
	}
	if err := v.ValidateTag(strings.Repeat("x", 101)); err == nil {
		t.Error("overlong tag should fail")
	}
	if err := v.ValidateTag("<script>"); err == nil {
		t.Error("dangerous tag should fail")
	}
}

func validRequest() *engine.SuggestRequest {
	return &engine.SuggestRequest{
		PatientID:       "patient-1",
		RepertorySource: "kent",
		Case: engine.CaseInput{
			Mental:        []engine.SymptomInput{{SymptomText: "fear of death"}},
			Particulars:   []engine.SymptomInput{{SymptomText: "burning pain", Location: "stomach", Sensation: "burning"}},
			Modalities:    []engine.SymptomInput{{SymptomText: "warmth", Type: "better"}},
			PathologyTags: []string{"asthma"},
		},
	}
}

func TestValidateSuggestRequest(t *testing.T) {
	v := NewRequestValidator()

	if err := v.ValidateSuggestRequest(validRequest()); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestValidateSuggestRequestRejections(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name   string
		mutate func(*engine.SuggestRequest)
	}{
		{"dangerous symptom", func(r *engine.SuggestRequest) {
			r.Case.Mental[0].SymptomText = "<script>x</script>"
		}},
		{"dangerous location", func(r *engine.SuggestRequest) {
			r.Case.Particulars[0].Location = "'; drop table cases; --"
		}},
		{"bad modality type", func(r *engine.SuggestRequest) {
			r.Case.Modalities[0].Type = "sideways"
		}},
		{"dangerous tag", func(r *engine.SuggestRequest) {
			r.Case.PathologyTags = []string{"eval(x)"}
		}},
		{"dangerous patient id", func(r *engine.SuggestRequest) {
			r.PatientID = "file://etc/passwd"
		}},
		{"too many symptoms", func(r *engine.SuggestRequest) {
			r.Case.Generals = make([]engine.SymptomInput, 201)
		}},
		{"too many tags", func(r *engine.SuggestRequest) {
			r.Case.PathologyTags = make([]string, 51)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			if err := v.ValidateSuggestRequest(req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateSuggestRequestModalityCase(t *testing.T) {
	v := NewRequestValidator()

	req := validRequest()
	req.Case.Modalities[0].Type = " WORSE "
	if err := v.ValidateSuggestRequest(req); err != nil {
		t.Errorf("modality type should compare case-insensitively: %v", err)
	}
}
