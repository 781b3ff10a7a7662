package repertory

import (
	"strings"

	"github.com/clinicore/remedy-api/repertory/entities"
)

// Snapshot is one immutable, fully-consistent view of the reference data.
// A snapshot is built in full by the parser and swapped in atomically; no
// field is ever mutated after Build returns. Concurrent suggestion requests
// all read the same snapshot without coordination.
type Snapshot struct {
	Rubrics         []entities.Rubric
	Remedies        []entities.Remedy
	RubricsByID     map[string]entities.Rubric
	RemediesByID    map[string]entities.Remedy
	RubricsBySource map[string][]entities.Rubric
	MaxGrade        int
}

// RubricsFor returns the rubrics of a named repertory source, or every rubric
// when source is empty. Source names compare case-insensitively.
func (s *Snapshot) RubricsFor(source string) []entities.Rubric {
	if source == "" {
		return s.Rubrics
	}
	return s.RubricsBySource[strings.ToLower(source)]
}

// Empty reports whether the snapshot holds no usable reference data.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Rubrics) == 0 || len(s.Remedies) == 0
}
