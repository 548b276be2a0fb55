package assessment

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthcheckup/assessment/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type referenceRepoPG struct{ pool *pgxpool.Pool }

func NewReferenceRepoPG(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepoPG{pool: pool}
}

func (r *referenceRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *referenceRepoPG) ListConditions(ctx context.Context) ([]Condition, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT condition_id, name, COALESCE(description, '')
		FROM conditions
		ORDER BY condition_id`)
	if err != nil {
		return nil, dataAccess("list conditions", err)
	}
	defer rows.Close()

	var items []Condition
	for rows.Next() {
		var c Condition
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, dataAccess("scan condition", err)
		}
		items = append(items, c)
	}
	return items, dataAccess("iterate conditions", rows.Err())
}

func (r *referenceRepoPG) ListConditionSymptoms(ctx context.Context) ([]ConditionSymptomRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT cs.condition_id, s.name, cs.weight, COALESCE(s.category, '')
		FROM condition_symptoms cs
		JOIN symptoms s ON cs.symptom_id = s.symptom_id
		ORDER BY cs.condition_id, s.symptom_id`)
	if err != nil {
		return nil, dataAccess("load symptom weights", err)
	}
	defer rows.Close()

	var items []ConditionSymptomRow
	for rows.Next() {
		var row ConditionSymptomRow
		if err := rows.Scan(&row.ConditionID, &row.SymptomName, &row.Weight, &row.Category); err != nil {
			return nil, dataAccess("scan symptom weight", err)
		}
		items = append(items, row)
	}
	return items, dataAccess("iterate symptom weights", rows.Err())
}

func (r *referenceRepoPG) ListRecommendations(ctx context.Context, id ConditionID) ([]Recommendation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT condition_id, recommendation, priority
		FROM recommendations
		WHERE condition_id = $1
		ORDER BY priority DESC, recommendation`, int64(id))
	if err != nil {
		return nil, dataAccess("list recommendations", err)
	}
	defer rows.Close()

	var items []Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ConditionID, &rec.Text, &rec.Priority); err != nil {
			return nil, dataAccess("scan recommendation", err)
		}
		items = append(items, rec)
	}
	return items, dataAccess("iterate recommendations", rows.Err())
}
