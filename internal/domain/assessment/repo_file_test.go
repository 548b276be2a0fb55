package assessment

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoadReferenceFile(t *testing.T) {
	repo, err := LoadReferenceFile(filepath.Join("testdata", "reference.yaml"))
	if err != nil {
		t.Fatalf("LoadReferenceFile() error: %v", err)
	}
	ctx := context.Background()

	conditions, err := repo.ListConditions(ctx)
	if err != nil {
		t.Fatalf("ListConditions() error: %v", err)
	}
	if len(conditions) != 2 || conditions[0].ID != 1 || conditions[0].Name != "Common Cold" {
		t.Errorf("expected conditions ordered by id, got %+v", conditions)
	}

	rows, err := repo.ListConditionSymptoms(ctx)
	if err != nil {
		t.Fatalf("ListConditionSymptoms() error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 weight rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.SymptomName == "headache" && r.Category != "pain" {
			t.Errorf("expected category from symptom table, got %+v", r)
		}
	}

	recs, err := repo.ListRecommendations(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecommendations() error: %v", err)
	}
	if len(recs) != 2 || recs[0].Text != "Drink warm fluids" {
		t.Errorf("expected recommendations by descending priority, got %+v", recs)
	}

	none, err := repo.ListRecommendations(ctx, 99)
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty list for unknown condition, got %v, %v", none, err)
	}
}

func TestLoadReferenceFile_EndToEnd(t *testing.T) {
	repo, err := LoadReferenceFile(filepath.Join("testdata", "reference.yaml"))
	if err != nil {
		t.Fatalf("LoadReferenceFile() error: %v", err)
	}

	res, err := NewService(repo, zerolog.Nop()).Assess(context.Background(), coldReport())
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}
	if res.PossibleCondition != "Common Cold" || res.MatchConfidence != 100 || res.UrgencyLevel != 16 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestParseReference_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "malformed",
			yaml:    "conditions: [",
			wantMsg: "parse reference file",
		},
		{
			name: "duplicate id",
			yaml: `
conditions:
  - {id: 1, name: A}
  - {id: 1, name: B}`,
			wantMsg: "duplicate condition id 1",
		},
		{
			name: "unknown symptom",
			yaml: `
symptoms:
  - {id: 1, name: cough, category: general}
conditions:
  - id: 1
    name: A
    weights: {sneeze: 2}`,
			wantMsg: `unknown symptom "sneeze"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReference([]byte(tt.yaml))
			var derr *DataAccessError
			if !errors.As(err, &derr) {
				t.Fatalf("expected DataAccessError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLoadReferenceFile_Missing(t *testing.T) {
	_, err := LoadReferenceFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var derr *DataAccessError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DataAccessError, got %v", err)
	}
}

func TestFileRepo_ReturnsCopies(t *testing.T) {
	repo, err := LoadReferenceFile(filepath.Join("testdata", "reference.yaml"))
	if err != nil {
		t.Fatalf("LoadReferenceFile() error: %v", err)
	}
	ctx := context.Background()

	first, _ := repo.ListConditions(ctx)
	first[0].Name = "mutated"
	second, _ := repo.ListConditions(ctx)
	if second[0].Name == "mutated" {
		t.Error("repository state leaked through returned slice")
	}
}

func TestParseReference_EqualPriorityByText(t *testing.T) {
	repo, err := ParseReference([]byte(`
conditions:
  - id: 1
    name: A
    recommendations:
      - {text: Zinc lozenges, priority: 2}
      - {text: Early night, priority: 1}
      - {text: Avoid dairy, priority: 2}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	recs, err := repo.ListRecommendations(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, r := range recs {
		got = append(got, r.Text)
	}
	want := []string{"Avoid dairy", "Zinc lozenges", "Early night"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLoadReferenceFile_ShippedFixture(t *testing.T) {
	repo, err := LoadReferenceFile(filepath.Join("..", "..", "..", "fixtures", "reference.yaml"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	conditions, err := repo.ListConditions(context.Background())
	if err != nil {
		t.Fatalf("list conditions: %v", err)
	}
	if len(conditions) != 5 {
		t.Fatalf("expected 5 conditions, got %d", len(conditions))
	}
	for _, c := range conditions {
		recs, err := repo.ListRecommendations(context.Background(), c.ID)
		if err != nil || len(recs) == 0 {
			t.Errorf("condition %q has no recommendations (%v)", c.Name, err)
		}
	}

	res, err := NewService(repo, zerolog.Nop()).Assess(context.Background(), coldReport())
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if res.PossibleCondition == DefaultResult().PossibleCondition {
		t.Error("expected a match against the shipped fixture")
	}
	if len(res.Alternatives) > 2 {
		t.Errorf("expected at most 2 alternatives, got %d", len(res.Alternatives))
	}
}
