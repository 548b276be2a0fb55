package assessment

import (
	"context"
	"sort"
)

// WeightedSymptom is one symptom of a condition's profile.
type WeightedSymptom struct {
	Name     string
	Weight   float64
	Category string
}

// WeightTable indexes every condition's weighted symptom profile. It is built
// once per assessment and not modified afterwards.
type WeightTable struct {
	byCondition map[ConditionID][]WeightedSymptom
}

// NewWeightTable groups join rows by condition. Symptom names get the same
// normalization as reported symptoms; rows with a non-positive weight are
// dropped.
func NewWeightTable(rows []ConditionSymptomRow) *WeightTable {
	t := &WeightTable{byCondition: make(map[ConditionID][]WeightedSymptom)}
	for _, row := range rows {
		if row.Weight <= 0 {
			continue
		}
		t.byCondition[row.ConditionID] = append(t.byCondition[row.ConditionID], WeightedSymptom{
			Name:     cleanText(row.SymptomName),
			Weight:   row.Weight,
			Category: row.Category,
		})
	}
	return t
}

// LoadWeightTable reads the full condition/symptom weight join from repo.
func LoadWeightTable(ctx context.Context, repo ReferenceRepository) (*WeightTable, error) {
	rows, err := repo.ListConditionSymptoms(ctx)
	if err != nil {
		return nil, err
	}
	return NewWeightTable(rows), nil
}

// Profile returns the weighted symptoms recorded for a condition.
func (t *WeightTable) Profile(id ConditionID) []WeightedSymptom {
	return t.byCondition[id]
}

// Len reports how many conditions have at least one weighted symptom.
func (t *WeightTable) Len() int {
	return len(t.byCondition)
}

// SymptomSet is the set of reported, normalized symptom names.
type SymptomSet map[string]struct{}

// NewSymptomSet builds a set from normalized symptom names.
func NewSymptomSet(names ...string) SymptomSet {
	s := make(SymptomSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name was reported.
func (s SymptomSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Score computes the match score of a condition against the reported symptoms
// using the default category bonus.
func (t *WeightTable) Score(id ConditionID, reported SymptomSet) float64 {
	return ScoreProfile(t.Profile(id), reported, DefaultRules().CategoryBonus)
}

// ScoreProfile returns (matched weight / total weight) * 100, after applying
// the same-category bonus. The result can exceed 100.
func ScoreProfile(profile []WeightedSymptom, reported SymptomSet, categoryBonus float64) float64 {
	if len(profile) == 0 {
		return 0
	}

	var matchScore, totalWeight float64
	categoryMatches := make(map[string]int)
	var categories []string

	for _, s := range profile {
		totalWeight += s.Weight
		if !reported.Has(s.Name) {
			continue
		}
		matchScore += s.Weight
		if categoryMatches[s.Category] == 0 {
			categories = append(categories, s.Category)
		}
		categoryMatches[s.Category]++
	}

	for _, c := range categories {
		if n := categoryMatches[c]; n > 1 {
			matchScore *= 1 + float64(n)*categoryBonus
		}
	}

	if totalWeight <= 0 {
		return 0
	}
	return matchScore / totalWeight * 100
}

// candidate is a condition that cleared the confidence threshold.
type candidate struct {
	condition Condition
	score     float64
}

// rankCandidates scores every condition, keeps those at or above the
// threshold and orders them by descending score, then ascending id.
func rankCandidates(conditions []Condition, table *WeightTable, reported SymptomSet, rules Rules) []candidate {
	var out []candidate
	for _, c := range conditions {
		score := ScoreProfile(table.Profile(c.ID), reported, rules.CategoryBonus)
		if score >= rules.MinConfidence {
			out = append(out, candidate{condition: c, score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].condition.ID < out[j].condition.ID
	})
	return out
}
