package assessment

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ReferenceFile is the on-disk YAML form of the reference tables, used by
// the offline assess command and by deployments without a database.
type ReferenceFile struct {
	Symptoms   []Symptom            `yaml:"symptoms"`
	Conditions []ReferenceCondition `yaml:"conditions"`
}

// ReferenceCondition is a condition with its weights and advice inlined.
type ReferenceCondition struct {
	Condition       `yaml:",inline"`
	Weights         map[string]float64 `yaml:"weights"`
	Recommendations []struct {
		Text     string `yaml:"text"`
		Priority int    `yaml:"priority"`
	} `yaml:"recommendations"`
}

type fileReferenceRepo struct {
	conditions []Condition
	rows       []ConditionSymptomRow
	recs       map[ConditionID][]Recommendation
}

// LoadReferenceFile parses a YAML reference file into a repository.
func LoadReferenceFile(path string) (ReferenceRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dataAccess("read reference file", err)
	}
	return ParseReference(data)
}

// ParseReference builds an in-memory repository from YAML. Weights must
// name a declared symptom.
func ParseReference(data []byte) (ReferenceRepository, error) {
	var f ReferenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, dataAccess("parse reference file", err)
	}

	symptoms := make(map[string]Symptom, len(f.Symptoms))
	for _, s := range f.Symptoms {
		symptoms[s.Name] = s
	}

	repo := &fileReferenceRepo{recs: make(map[ConditionID][]Recommendation)}
	seen := make(map[ConditionID]bool, len(f.Conditions))
	for _, c := range f.Conditions {
		if seen[c.ID] {
			return nil, dataAccess("parse reference file", fmt.Errorf("duplicate condition id %d", c.ID))
		}
		seen[c.ID] = true
		repo.conditions = append(repo.conditions, c.Condition)

		names := make([]string, 0, len(c.Weights))
		for name := range c.Weights {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s, ok := symptoms[name]
			if !ok {
				return nil, dataAccess("parse reference file",
					fmt.Errorf("condition %d weights unknown symptom %q", c.ID, name))
			}
			repo.rows = append(repo.rows, ConditionSymptomRow{
				ConditionID: c.ID,
				SymptomName: s.Name,
				Weight:      c.Weights[name],
				Category:    s.Category,
			})
		}

		for _, r := range c.Recommendations {
			repo.recs[c.ID] = append(repo.recs[c.ID], Recommendation{
				ConditionID: c.ID,
				Text:        r.Text,
				Priority:    r.Priority,
			})
		}
		recs := repo.recs[c.ID]
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].Priority != recs[j].Priority {
				return recs[i].Priority > recs[j].Priority
			}
			return recs[i].Text < recs[j].Text
		})
	}

	sort.SliceStable(repo.conditions, func(i, j int) bool {
		return repo.conditions[i].ID < repo.conditions[j].ID
	})
	return repo, nil
}

func (r *fileReferenceRepo) ListConditions(_ context.Context) ([]Condition, error) {
	out := make([]Condition, len(r.conditions))
	copy(out, r.conditions)
	return out, nil
}

func (r *fileReferenceRepo) ListConditionSymptoms(_ context.Context) ([]ConditionSymptomRow, error) {
	out := make([]ConditionSymptomRow, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *fileReferenceRepo) ListRecommendations(_ context.Context, id ConditionID) ([]Recommendation, error) {
	recs := r.recs[id]
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	return out, nil
}
