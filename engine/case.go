// Package engine implements the remedy suggestion pipeline: case
// normalization, rubric matching, remedy pool aggregation, scoring, safety
// annotation and ranking. Every stage is pure computation over the caller's
// case and an immutable reference-data snapshot, so any number of requests
// can run concurrently with no coordination.
package engine

// Category classifies a reported symptom.
type Category string

const (
	CategoryMental     Category = "mental"
	CategoryGeneral    Category = "general"
	CategoryParticular Category = "particular"
	CategoryModality   Category = "modality"
)

// Categories lists all symptom categories in canonical order.
var Categories = []Category{CategoryMental, CategoryGeneral, CategoryParticular, CategoryModality}

// ModalityType marks whether a modality makes a symptom better or worse.
type ModalityType string

const (
	ModalityBetter ModalityType = "better"
	ModalityWorse  ModalityType = "worse"
)

// SymptomInput is one reported symptom as received on the wire.
type SymptomInput struct {
	SymptomText string   `json:"symptomText"`
	Location    string   `json:"location,omitempty"`
	Sensation   string   `json:"sensation,omitempty"`
	Type        string   `json:"type,omitempty"` // better|worse, modalities only
	Weight      *float64 `json:"weight,omitempty"`
}

// CaseInput is the structured clinical case supplied by the caller.
type CaseInput struct {
	Mental        []SymptomInput `json:"mental"`
	Generals      []SymptomInput `json:"generals"`
	Particulars   []SymptomInput `json:"particulars"`
	Modalities    []SymptomInput `json:"modalities"`
	PathologyTags []string       `json:"pathologyTags"`
}

// SuggestRequest is the inbound contract of the engine.
type SuggestRequest struct {
	PatientID       string    `json:"patientId,omitempty"`
	RepertorySource string    `json:"repertorySource,omitempty"`
	Case            CaseInput `json:"case"`
}

// SymptomEntry is a normalized symptom. Folded fields carry the canonical
// text form used for matching; Text keeps what the doctor typed for display.
type SymptomEntry struct {
	Category  Category
	Text      string
	Location  string
	Sensation string
	Modality  ModalityType
	Weight    float64

	Folded          string
	FoldedLocation  string
	FoldedSensation string
	Tokens          map[string]struct{}
}

// NormalizedCase is the deduplicated, default-weighted case the pipeline
// operates on. All slices are fully populated by the normalizer; ordering
// within a category follows input order of first occurrence.
type NormalizedCase struct {
	Mental      []SymptomEntry
	Generals    []SymptomEntry
	Particulars []SymptomEntry
	Modalities  []SymptomEntry

	PathologyTags []string // folded, deduplicated, sorted
	IsAcute       bool
	IsChronic     bool
}

// Symptoms returns every normalized symptom in canonical category order.
func (nc *NormalizedCase) Symptoms() []SymptomEntry {
	out := make([]SymptomEntry, 0, len(nc.Mental)+len(nc.Generals)+len(nc.Particulars)+len(nc.Modalities))
	out = append(out, nc.Mental...)
	out = append(out, nc.Generals...)
	out = append(out, nc.Particulars...)
	out = append(out, nc.Modalities...)
	return out
}

// TotalWeight sums the weights of every symptom in the case.
func (nc *NormalizedCase) TotalWeight() float64 {
	var total float64
	for _, s := range nc.Symptoms() {
		total += s.Weight
	}
	return total
}

// TopCategory returns the category carrying the highest total weight.
// Ties resolve in canonical category order so the result is deterministic.
func (nc *NormalizedCase) TopCategory() Category {
	weights := map[Category]float64{}
	for _, s := range nc.Symptoms() {
		weights[s.Category] += s.Weight
	}

	top := CategoryMental
	best := weights[CategoryMental]
	for _, cat := range Categories[1:] {
		if weights[cat] > best {
			top = cat
			best = weights[cat]
		}
	}
	return top
}
