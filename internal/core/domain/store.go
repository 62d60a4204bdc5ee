package domain

import "context"

// Record is a single row as returned by the backend store, keyed by column.
type Record map[string]any

// Order selects a single sort column for Select queries.
type Order struct {
	Field     string
	Ascending bool
}

// Query describes an equality-filtered selection. Every non-nil entry in
// Filters is ANDed. Limit == 0 means no range is applied.
type Query struct {
	Filters map[string]any
	Order   *Order
	Offset  int
	Limit   int
}

// Store is the query surface the resource repository delegates to.
// Implementations live in internal/core/repository (Core layer).
type Store interface {
	// Select returns the matching rows and the total number of rows matching
	// the filters regardless of the range.
	Select(ctx context.Context, collection string, q Query) ([]Record, int64, error)

	// Insert adds one row and returns it as stored, including generated
	// identity and timestamps.
	Insert(ctx context.Context, collection string, fields map[string]any) (Record, error)

	// UpdateByID applies a partial column update to the row with the given
	// key and returns the updated row. Returns (nil, nil) when no row has
	// that key.
	UpdateByID(ctx context.Context, collection string, id any, fields map[string]any) (Record, error)

	// FetchByID returns the row with the given key, or (nil, nil) when
	// absent.
	FetchByID(ctx context.Context, collection string, id any) (Record, error)
}
