package llmconfig

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthcheckup/assessment/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT config_key, config_value, updated_at
		FROM configurations
		ORDER BY config_key`)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	defer rows.Close()

	var items []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan configuration: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *repoPG) Upsert(ctx context.Context, entries []Entry) error {
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		for _, e := range entries {
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO configurations (config_key, config_value, created_at, updated_at)
				VALUES ($1, $2, NOW(), NOW())
				ON CONFLICT (config_key)
				DO UPDATE SET config_value = EXCLUDED.config_value, updated_at = NOW()`,
				e.Key, e.Value)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", e.Key, err)
			}
		}
		return nil
	})
}
