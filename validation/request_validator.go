// Package validation provides inbound request validation for the remedy API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clinicore/remedy-api/engine"
	"github.com/clinicore/remedy-api/interfaces"
)

const (
	maxTextLength = 200
	maxTagLength  = 100
	maxSymptoms   = 200
	maxTags       = 50
)

// Pre-compiled patterns, built once at package initialization.
var (
	// Symptom text: letters (accents included), digits and safe punctuation.
	textRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.,\+'()/]+$`)

	// Dangerous substrings rejected outright. strings.Contains beats regex
	// for plain substring screening.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"' or ", "\" or ", "union select", "drop table", "delete from",
		"insert into", "--", "/*", "*/",
		"../", "..\\", "file://",
		"${", "$(", "`",
	}
)

// Compile-time check to ensure RequestValidator implements the contract
var _ interfaces.RequestValidator = (*RequestValidator)(nil)

// RequestValidator screens caller-supplied strings before they reach the
// engine. The engine's own typed errors cover clinical semantics (weights,
// empty cases); this layer covers transport-level hygiene.
type RequestValidator struct{}

// NewRequestValidator creates a new validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// ValidateText checks one free-text field.
func (v *RequestValidator) ValidateText(field, input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil // empty optional fields are the normalizer's concern
	}

	if len(trimmed) > maxTextLength {
		return fmt.Errorf("%s too long: %d characters (max %d)", field, len(trimmed), maxTextLength)
	}

	lowered := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return fmt.Errorf("%s contains disallowed sequence", field)
		}
	}

	if !textRegex.MatchString(trimmed) {
		return fmt.Errorf("%s contains unsupported characters", field)
	}

	return nil
}

// ValidateTag checks one pathology tag.
func (v *RequestValidator) ValidateTag(tag string) error {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) > maxTagLength {
		return fmt.Errorf("pathology tag too long: %d characters (max %d)", len(trimmed), maxTagLength)
	}
	return v.ValidateText("pathology tag", trimmed)
}

// ValidateSuggestRequest checks every text field of a suggestion request.
func (v *RequestValidator) ValidateSuggestRequest(req *engine.SuggestRequest) error {
	total := len(req.Case.Mental) + len(req.Case.Generals) + len(req.Case.Particulars) + len(req.Case.Modalities)
	if total > maxSymptoms {
		return fmt.Errorf("too many symptoms: %d (max %d)", total, maxSymptoms)
	}
	if len(req.Case.PathologyTags) > maxTags {
		return fmt.Errorf("too many pathology tags: %d (max %d)", len(req.Case.PathologyTags), maxTags)
	}

	if err := v.ValidateText("patientId", req.PatientID); err != nil {
		return err
	}
	if err := v.ValidateText("repertorySource", req.RepertorySource); err != nil {
		return err
	}

	for _, group := range [][]engine.SymptomInput{req.Case.Mental, req.Case.Generals, req.Case.Particulars, req.Case.Modalities} {
		for _, sym := range group {
			if err := v.ValidateText("symptomText", sym.SymptomText); err != nil {
				return err
			}
			if err := v.ValidateText("location", sym.Location); err != nil {
				return err
			}
			if err := v.ValidateText("sensation", sym.Sensation); err != nil {
				return err
			}
			if sym.Type != "" {
				lowered := strings.ToLower(strings.TrimSpace(sym.Type))
				if lowered != "better" && lowered != "worse" {
					return fmt.Errorf("modality type must be better or worse, got %q", sym.Type)
				}
			}
		}
	}

	for _, tag := range req.Case.PathologyTags {
		if err := v.ValidateTag(tag); err != nil {
			return err
		}
	}

	return nil
}
