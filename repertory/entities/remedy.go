package entities

// Remedy is a candidate treatment record. The engine only ever reads these;
// they are owned by the reference-data files and rebuilt on every reload.
type Remedy struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Category             string            `json:"category"`
	ClinicalIndications  []string          `json:"clinicalIndications"`
	Contraindications    []string          `json:"contraindications,omitempty"`
	Incompatibilities    []string          `json:"incompatibilities,omitempty"`
	SupportedPotencies   []string          `json:"supportedPotencies"` // ordered low to high
	RepetitionBySeverity map[string]string `json:"repetitionBySeverity,omitempty"`

	// Derived at load time, never serialized.
	IndicationTokens map[string]struct{} `json:"-"`
	ContraTokens     map[string]struct{} `json:"-"`
}
