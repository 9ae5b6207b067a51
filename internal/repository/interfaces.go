package repository

import (
	"context"

	"namedesk/internal/types"
)

// RecordRepository persists records
type RecordRepository interface {
	// List returns every row in storage order; an empty table yields an empty slice
	List(ctx context.Context) ([]types.Record, error)
	// Insert fails with a DUPLICATE error when the id already exists
	Insert(ctx context.Context, record types.Record) error
	// Delete removes rows matching both id and name and reports how many went.
	// No match is not an error.
	Delete(ctx context.Context, id, name string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
