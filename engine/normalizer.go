package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/clinicore/remedy-api/textnorm"
)

// NormalizeCase converts raw case input into the canonical form the rest of
// the pipeline consumes. Pure function of its input: dedupes symptoms,
// applies category default weights, folds pathology tags and derives the
// acute/chronic flags.
func NormalizeCase(in CaseInput, rules *Ruleset) (*NormalizedCase, error) {
	nc := &NormalizedCase{}

	var err error
	if nc.Mental, err = normalizeCategory(in.Mental, CategoryMental, rules); err != nil {
		return nil, err
	}
	if nc.Generals, err = normalizeCategory(in.Generals, CategoryGeneral, rules); err != nil {
		return nil, err
	}
	if nc.Particulars, err = normalizeCategory(in.Particulars, CategoryParticular, rules); err != nil {
		return nil, err
	}
	if nc.Modalities, err = normalizeCategory(in.Modalities, CategoryModality, rules); err != nil {
		return nil, err
	}

	if len(nc.Symptoms()) == 0 {
		return nil, ErrEmptyCase
	}

	nc.PathologyTags = normalizeTags(in.PathologyTags)
	for _, tag := range nc.PathologyTags {
		switch {
		case tag == "acute":
			nc.IsAcute = true
		case tag == "chronic" || rules.MatchesChronicPattern(tag):
			nc.IsChronic = true
		}
	}

	return nc, nil
}

func normalizeCategory(inputs []SymptomInput, cat Category, rules *Ruleset) ([]SymptomEntry, error) {
	type dedupeKey struct {
		text, location, sensation string
		modality                  ModalityType
	}

	byKey := make(map[dedupeKey]int)
	var entries []SymptomEntry

	for _, in := range inputs {
		text := strings.TrimSpace(in.SymptomText)
		if text == "" {
			continue
		}

		weight := rules.DefaultWeights[cat]
		if in.Weight != nil {
			w := *in.Weight
			if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, &InvalidWeightError{SymptomText: text, Weight: w}
			}
			weight = math.Min(w, rules.MaxSymptomWeight)
		}

		entry := SymptomEntry{
			Category: cat,
			Text:     text,
			Weight:   weight,
			Folded:   textnorm.Fold(text),
			Tokens:   textnorm.SignificantTokens(text),
		}

		// Location and sensation only carry meaning for particulars, the
		// modality direction only for modalities.
		if cat == CategoryParticular {
			entry.Location = strings.TrimSpace(in.Location)
			entry.Sensation = strings.TrimSpace(in.Sensation)
			entry.FoldedLocation = textnorm.Fold(entry.Location)
			entry.FoldedSensation = textnorm.Fold(entry.Sensation)
		}
		if cat == CategoryModality {
			switch strings.ToLower(strings.TrimSpace(in.Type)) {
			case "better":
				entry.Modality = ModalityBetter
			case "worse":
				entry.Modality = ModalityWorse
			}
		}

		key := dedupeKey{
			text:      entry.Folded,
			location:  entry.FoldedLocation,
			sensation: entry.FoldedSensation,
			modality:  entry.Modality,
		}

		// Identical entries collapse to one, keeping the maximum weight.
		if idx, seen := byKey[key]; seen {
			if entry.Weight > entries[idx].Weight {
				entries[idx].Weight = entry.Weight
			}
			continue
		}

		byKey[key] = len(entries)
		entries = append(entries, entry)
	}

	return entries, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range tags {
		folded := textnorm.Fold(tag)
		if folded == "" {
			continue
		}
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, folded)
	}
	sort.Strings(out)
	return out
}
