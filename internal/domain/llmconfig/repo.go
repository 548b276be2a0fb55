package llmconfig

import "context"

type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	// Upsert writes every entry or none of them.
	Upsert(ctx context.Context, entries []Entry) error
}
