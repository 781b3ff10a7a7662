// Package narrative turns an already-computed suggestion set into a short
// prose summary for the clinician. It is a presentation collaborator only:
// nothing here feeds back into matching or scoring.
package narrative

import (
	"fmt"
	"strings"

	"github.com/clinicore/remedy-api/engine"
)

// Narrator produces a human-readable summary of a computed case.
type Narrator interface {
	Summarize(nc *engine.NormalizedCase, suggestions []engine.RemedySuggestion) string
}

// TemplateNarrator builds the summary from fixed templates. Deterministic:
// the same case and suggestions always yield the same text.
type TemplateNarrator struct{}

// NewTemplateNarrator creates the default narrator.
func NewTemplateNarrator() *TemplateNarrator {
	return &TemplateNarrator{}
}

// Summarize describes the case shape and the leading suggestions.
func (n *TemplateNarrator) Summarize(nc *engine.NormalizedCase, suggestions []engine.RemedySuggestion) string {
	if nc == nil || len(suggestions) == 0 {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Case presents %s. ", describeShape(nc))

	top := suggestions[0]
	fmt.Fprintf(&b, "The leading suggestion is %s (score %.0f, %s confidence)",
		top.RemedyName, top.MatchScore, strings.ReplaceAll(string(top.Confidence), "_", " "))
	if top.SuggestedPotency != "" {
		fmt.Fprintf(&b, " at potency %s, %s", top.SuggestedPotency, top.Repetition)
	}
	b.WriteString(". ")

	if len(suggestions) > 1 {
		alternatives := make([]string, 0, 2)
		for _, s := range suggestions[1:] {
			alternatives = append(alternatives, s.RemedyName)
			if len(alternatives) == 2 {
				break
			}
		}
		fmt.Fprintf(&b, "Alternatives to consider: %s. ", strings.Join(alternatives, ", "))
	}

	warningCount := 0
	for _, s := range suggestions {
		warningCount += len(s.Warnings)
	}
	if warningCount > 0 {
		fmt.Fprintf(&b, "Review the %d safety warning(s) before prescribing.", warningCount)
	}

	return strings.TrimSpace(b.String())
}

func describeShape(nc *engine.NormalizedCase) string {
	counts := []string{}
	if len(nc.Mental) > 0 {
		counts = append(counts, fmt.Sprintf("%d mental", len(nc.Mental)))
	}
	if len(nc.Generals) > 0 {
		counts = append(counts, fmt.Sprintf("%d general", len(nc.Generals)))
	}
	if len(nc.Particulars) > 0 {
		counts = append(counts, fmt.Sprintf("%d particular", len(nc.Particulars)))
	}
	if len(nc.Modalities) > 0 {
		counts = append(counts, fmt.Sprintf("%d modality", len(nc.Modalities)))
	}

	shape := strings.Join(counts, ", ") + " symptom(s)"
	switch {
	case nc.IsAcute && nc.IsChronic:
		shape += " in an acute-on-chronic picture"
	case nc.IsAcute:
		shape += " in an acute picture"
	case nc.IsChronic:
		shape += " in a chronic picture"
	}
	return shape
}
