package entities

// Rubric is a named diagnostic category in a repertory. RemedyGrades maps
// remedy ids to a small positive integer expressing the clinical strength of
// the association (1 = mentioned, higher = more characteristic).
type Rubric struct {
	ID              string         `json:"id"`
	Text            string         `json:"text"`
	RepertorySource string         `json:"repertorySource"`
	Chapter         string         `json:"chapter"`
	RemedyGrades    map[string]int `json:"remedyGrades"`

	// Derived at load time, never serialized.
	SearchText string              `json:"-"` // canonical form of Text
	Tokens     map[string]struct{} `json:"-"` // significant tokens of Text
	GradeSum   int                 `json:"-"` // sum of RemedyGrades values
}
