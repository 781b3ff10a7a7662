package engine

import (
	"errors"
	"fmt"
)

// Typed failure conditions surfaced to the caller. The pipeline either runs
// all six stages to completion or fails with exactly one of these; per-symptom
// zero matches and per-remedy warnings are normal branches, not errors.
var (
	// ErrEmptyCase is returned when all four symptom category lists are empty.
	ErrEmptyCase = errors.New("case contains no symptoms")

	// ErrReferenceDataUnavailable is returned when no usable repertory
	// snapshot could be obtained. Never retried here; retries belong to the
	// I/O layer around the engine.
	ErrReferenceDataUnavailable = errors.New("reference data unavailable")

	// ErrNoMatches is returned when the pipeline completed but no remedy
	// scored above the minimum. Distinct from an empty success payload so
	// callers can present a broaden-your-case message.
	ErrNoMatches = errors.New("no remedies matched the case")
)

// InvalidWeightError reports a caller-supplied symptom weight that is
// non-positive or non-finite.
type InvalidWeightError struct {
	SymptomText string
	Weight      float64
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("invalid weight %v for symptom %q: must be a finite positive number", e.Weight, e.SymptomText)
}
