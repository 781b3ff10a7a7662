// Package repertory loads and indexes the engine's reference data: diagnostic
// rubrics and remedy records. Data lives in JSON files under the configured
// data directory and is reparsed in full on every reload; readers only ever
// see complete snapshots.
package repertory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clinicore/remedy-api/logging"
	"github.com/clinicore/remedy-api/repertory/entities"
	"github.com/clinicore/remedy-api/textnorm"
)

const (
	rubricsFile  = "rubrics.json"
	remediesFile = "remedies.json"
)

// Parser reads reference data from a directory of JSON files. It satisfies
// interfaces.RepertoryParser; the assertion lives with the consumers to keep
// this package free of upward imports.
type Parser struct {
	dataDir string
}

// NewParser creates a parser rooted at dataDir.
func NewParser(dataDir string) *Parser {
	return &Parser{dataDir: dataDir}
}

// ParseSnapshot reads, validates and indexes the full reference data set.
// The returned snapshot is complete and immutable.
func (p *Parser) ParseSnapshot() (*Snapshot, error) {
	rubrics, err := p.parseRubrics()
	if err != nil {
		return nil, fmt.Errorf("parsing rubrics: %w", err)
	}

	remedies, err := p.parseRemedies()
	if err != nil {
		return nil, fmt.Errorf("parsing remedies: %w", err)
	}

	return Build(rubrics, remedies), nil
}

func (p *Parser) parseRubrics() ([]entities.Rubric, error) {
	raw, err := os.ReadFile(filepath.Join(p.dataDir, rubricsFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rubricsFile, err)
	}

	var rubrics []entities.Rubric
	if err := json.Unmarshal(raw, &rubrics); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rubricsFile, err)
	}

	valid := rubrics[:0]
	for _, r := range rubrics {
		if err := validateRubric(&r); err != nil {
			logging.Warn("Skipping invalid rubric", "rubric_id", r.ID, "error", err)
			continue
		}
		valid = append(valid, r)
	}

	return valid, nil
}

func (p *Parser) parseRemedies() ([]entities.Remedy, error) {
	raw, err := os.ReadFile(filepath.Join(p.dataDir, remediesFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", remediesFile, err)
	}

	var remedies []entities.Remedy
	if err := json.Unmarshal(raw, &remedies); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", remediesFile, err)
	}

	valid := remedies[:0]
	for _, r := range remedies {
		if err := validateRemedy(&r); err != nil {
			logging.Warn("Skipping invalid remedy", "remedy_id", r.ID, "error", err)
			continue
		}
		valid = append(valid, r)
	}

	return valid, nil
}

// validateRubric enforces the matching eligibility invariant: a rubric must
// carry text and at least one positive remedy grade.
func validateRubric(r *entities.Rubric) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("empty rubric id")
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("empty rubric text")
	}
	if len(r.RemedyGrades) == 0 {
		return fmt.Errorf("rubric has no remedy grades")
	}
	for remedyID, grade := range r.RemedyGrades {
		if grade <= 0 {
			return fmt.Errorf("non-positive grade %d for remedy %s", grade, remedyID)
		}
	}
	return nil
}

func validateRemedy(r *entities.Remedy) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("empty remedy id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("empty name for remedy %s", r.ID)
	}
	return nil
}

// Build indexes already-validated reference data into a snapshot. Exposed
// separately from ParseSnapshot so tests and seed tooling can construct
// snapshots without touching the filesystem.
func Build(rubrics []entities.Rubric, remedies []entities.Remedy) *Snapshot {
	snap := &Snapshot{
		Rubrics:         make([]entities.Rubric, 0, len(rubrics)),
		Remedies:        make([]entities.Remedy, 0, len(remedies)),
		RubricsByID:     make(map[string]entities.Rubric, len(rubrics)),
		RemediesByID:    make(map[string]entities.Remedy, len(remedies)),
		RubricsBySource: make(map[string][]entities.Rubric),
	}

	for _, r := range rubrics {
		// Skipped duplicates must not leak their grades into MaxGrade.
		if _, dup := snap.RubricsByID[r.ID]; dup {
			logging.Warn("Duplicate rubric id, keeping first occurrence", "rubric_id", r.ID)
			continue
		}

		r.SearchText = textnorm.Fold(r.Text)
		r.Tokens = textnorm.SignificantTokens(r.Text)
		r.GradeSum = 0
		for _, grade := range r.RemedyGrades {
			r.GradeSum += grade
			if grade > snap.MaxGrade {
				snap.MaxGrade = grade
			}
		}

		snap.Rubrics = append(snap.Rubrics, r)
		snap.RubricsByID[r.ID] = r
		source := strings.ToLower(r.RepertorySource)
		snap.RubricsBySource[source] = append(snap.RubricsBySource[source], r)
	}

	for _, rem := range remedies {
		if _, dup := snap.RemediesByID[rem.ID]; dup {
			logging.Warn("Duplicate remedy id, keeping first occurrence", "remedy_id", rem.ID)
			continue
		}

		rem.IndicationTokens = tokenSet(rem.ClinicalIndications)
		rem.ContraTokens = tokenSet(rem.Contraindications)

		snap.Remedies = append(snap.Remedies, rem)
		snap.RemediesByID[rem.ID] = rem
	}

	return snap
}

func tokenSet(values []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, v := range values {
		for tok := range textnorm.SignificantTokens(v) {
			set[tok] = struct{}{}
		}
	}
	return set
}
