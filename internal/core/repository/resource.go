package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vinculo/crm-service/internal/core/domain"
	pkgzerolog "github.com/vinculo/crm-service/pkg/logger/zerolog"
)

// Page is one slice of a paginated result set. TotalPages is derived from
// the total filtered count, not from the number of rows returned.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Resource is a generic repository over one backend collection. It holds no
// cache: every operation is a round trip to the store. One instance is
// created per collection instead of one hand-written service per entity.
type Resource[T any] struct {
	store domain.Store
	name  string
}

// NewResource creates a repository for the named collection. T must carry
// json tags matching the collection's column names.
func NewResource[T any](store domain.Store, name string) *Resource[T] {
	return &Resource[T]{store: store, name: name}
}

// Name returns the collection name this repository is bound to.
func (r *Resource[T]) Name() string { return r.name }

// FindAll returns every row matching the equality filters, optionally
// ordered by a single field. Nil filter values are ignored. The result is
// never nil.
func (r *Resource[T]) FindAll(ctx context.Context, filters map[string]any, order *domain.Order) ([]T, error) {
	rows, _, err := r.store.Select(ctx, r.name, domain.Query{
		Filters: pruneNil(filters),
		Order:   order,
	})
	if err != nil {
		r.fail(ctx, "find_all", err)
		return nil, backendErr(r.name, "find_all", err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decodeRecord[T](row)
		if err != nil {
			r.fail(ctx, "find_all", err)
			return nil, backendErr(r.name, "find_all", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FindByID returns the row with the given key, or (nil, nil) when absent.
// Absence is not an error.
func (r *Resource[T]) FindByID(ctx context.Context, id any) (*T, error) {
	row, err := r.store.FetchByID(ctx, r.name, id)
	if err != nil {
		r.fail(ctx, "find_by_id", err)
		return nil, backendErr(r.name, "find_by_id", err)
	}
	if row == nil {
		return nil, nil
	}
	v, err := decodeRecord[T](row)
	if err != nil {
		r.fail(ctx, "find_by_id", err)
		return nil, backendErr(r.name, "find_by_id", err)
	}
	return &v, nil
}

// Create inserts one row and returns the stored record with its generated
// identity and timestamps. Rejected inserts surface as *BackendError and
// are not retried.
func (r *Resource[T]) Create(ctx context.Context, data any) (*T, error) {
	fields, err := toFields(data)
	if err != nil {
		return nil, backendErr(r.name, "create", err)
	}
	row, err := r.store.Insert(ctx, r.name, fields)
	if err != nil {
		r.fail(ctx, "create", err)
		return nil, backendErr(r.name, "create", err)
	}
	v, err := decodeRecord[T](row)
	if err != nil {
		r.fail(ctx, "create", err)
		return nil, backendErr(r.name, "create", err)
	}
	return &v, nil
}

// Update applies a partial merge to the row with the given key and returns
// the updated record. A missing target yields ErrNotFound, not a
// *BackendError.
func (r *Resource[T]) Update(ctx context.Context, id any, patch any) (*T, error) {
	fields, err := toFields(patch)
	if err != nil {
		return nil, backendErr(r.name, "update", err)
	}
	fields["updated_at"] = time.Now().UTC()

	row, err := r.store.UpdateByID(ctx, r.name, id, fields)
	if err != nil {
		r.fail(ctx, "update", err)
		return nil, backendErr(r.name, "update", err)
	}
	if row == nil {
		return nil, fmt.Errorf("update %s id=%v: %w", r.name, id, ErrNotFound)
	}
	v, err := decodeRecord[T](row)
	if err != nil {
		r.fail(ctx, "update", err)
		return nil, backendErr(r.name, "update", err)
	}
	return &v, nil
}

// Delete tombstones the row: deleted=true, active=false. The row is never
// physically removed. Deleting an already-deleted row succeeds; a missing
// key yields ErrNotFound.
func (r *Resource[T]) Delete(ctx context.Context, id any) error {
	row, err := r.store.UpdateByID(ctx, r.name, id, map[string]any{
		"deleted":    true,
		"active":     false,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		r.fail(ctx, "delete", err)
		return backendErr(r.name, "delete", err)
	}
	if row == nil {
		return fmt.Errorf("delete %s id=%v: %w", r.name, id, ErrNotFound)
	}
	return nil
}

// FindPaginated returns the requested page of the filtered collection.
// Count and TotalPages reflect the full filtered row count.
func (r *Resource[T]) FindPaginated(ctx context.Context, page, limit int, filters map[string]any) (*Page[T], error) {
	if page < 1 {
		return nil, fmt.Errorf("find_paginated %s: page must be >= 1, got %d", r.name, page)
	}
	if limit < 1 {
		return nil, fmt.Errorf("find_paginated %s: limit must be >= 1, got %d", r.name, limit)
	}

	rows, total, err := r.store.Select(ctx, r.name, domain.Query{
		Filters: pruneNil(filters),
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		r.fail(ctx, "find_paginated", err)
		return nil, backendErr(r.name, "find_paginated", err)
	}

	data := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decodeRecord[T](row)
		if err != nil {
			r.fail(ctx, "find_paginated", err)
			return nil, backendErr(r.name, "find_paginated", err)
		}
		data = append(data, v)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Page[T]{
		Data:       data,
		Count:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (r *Resource[T]) fail(ctx context.Context, op string, err error) {
	pkgzerolog.FromContext(ctx).Error().
		Err(err).
		Str("collection", r.name).
		Str("operation", op).
		Msg("Repository operation failed")
}

// pruneNil drops nil-valued filter entries so absent optional filters never
// turn into `field = NULL` predicates.
func pruneNil(filters map[string]any) map[string]any {
	if len(filters) == 0 {
		return nil
	}
	out := make(map[string]any, len(filters))
	for k, v := range filters {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// decodeRecord maps a column-keyed record onto T through its json tags.
func decodeRecord[T any](row domain.Record) (T, error) {
	var v T
	raw, err := json.Marshal(row)
	if err != nil {
		return v, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}

// toFields flattens a create or patch struct into column values. Pointer
// fields tagged omitempty vanish when nil, which is what gives patch
// structs their "no change" default.
func toFields(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
