package assessment

import "context"

// ReferenceRepository reads the condition reference data. Implementations
// wrap every failure in a DataAccessError.
type ReferenceRepository interface {
	// ListConditions returns every condition ordered by id.
	ListConditions(ctx context.Context) ([]Condition, error)
	// ListConditionSymptoms returns the condition_symptoms ⋈ symptoms join.
	ListConditionSymptoms(ctx context.Context) ([]ConditionSymptomRow, error)
	// ListRecommendations returns a condition's advice, highest priority first.
	ListRecommendations(ctx context.Context, id ConditionID) ([]Recommendation, error)
}
