package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vinculo/crm-service/internal/core/domain"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxStore implements domain.Store against Postgres. SQL is built from
// collection and column names that come from code, never from request
// payloads; identifiers are still validated before interpolation.
type PgxStore struct {
	db Querier
}

// NewPgxStore creates a store over the given pool or transaction.
func NewPgxStore(db Querier) *PgxStore {
	return &PgxStore{db: db}
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// sortedKeys keeps generated SQL deterministic for a given filter set.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildWhere(filters map[string]any) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var (
		conds []string
		args  []any
	)
	for _, k := range sortedKeys(filters) {
		if err := checkIdent(k); err != nil {
			return "", nil, err
		}
		args = append(args, filters[k])
		conds = append(conds, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func buildSelect(collection string, q domain.Query) (string, []any, error) {
	if err := checkIdent(collection); err != nil {
		return "", nil, err
	}
	where, args, err := buildWhere(q.Filters)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT * FROM " + collection + where

	if q.Order != nil {
		if err := checkIdent(q.Order.Field); err != nil {
			return "", nil, err
		}
		dir := "DESC"
		if q.Order.Ascending {
			dir = "ASC"
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", q.Order.Field, dir)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, q.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return sql, args, nil
}

func buildCount(collection string, filters map[string]any) (string, []any, error) {
	if err := checkIdent(collection); err != nil {
		return "", nil, err
	}
	where, args, err := buildWhere(filters)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + collection + where, args, nil
}

func buildInsert(collection string, fields map[string]any) (string, []any, error) {
	if err := checkIdent(collection); err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no fields", collection)
	}
	var (
		cols         []string
		placeholders []string
		args         []any
	)
	for _, k := range sortedKeys(fields) {
		if err := checkIdent(k); err != nil {
			return "", nil, err
		}
		args = append(args, fields[k])
		cols = append(cols, k)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		collection, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, args, nil
}

func buildUpdate(collection string, id any, fields map[string]any) (string, []any, error) {
	if err := checkIdent(collection); err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("update %s: no fields", collection)
	}
	var (
		sets []string
		args []any
	)
	for _, k := range sortedKeys(fields) {
		if err := checkIdent(k); err != nil {
			return "", nil, err
		}
		args = append(args, fields[k])
		sets = append(sets, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING *",
		collection, strings.Join(sets, ", "), len(args))
	return sql, args, nil
}

// Select returns the matching rows plus the total filtered count. The count
// is computed with a separate query only when a range is applied; otherwise
// it equals the number of rows returned.
func (s *PgxStore) Select(ctx context.Context, collection string, q domain.Query) ([]domain.Record, int64, error) {
	sql, args, err := buildSelect(collection, q)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	records, err := pgx.CollectRows(rows, collectRecord)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(records))
	if q.Limit > 0 {
		countSQL, countArgs, err := buildCount(collection, q.Filters)
		if err != nil {
			return nil, 0, err
		}
		countRows, err := s.db.Query(ctx, countSQL, countArgs...)
		if err != nil {
			return nil, 0, err
		}
		total, err = pgx.CollectOneRow(countRows, pgx.RowTo[int64])
		if err != nil {
			return nil, 0, err
		}
	}

	return records, total, nil
}

// Insert adds one row and returns it as stored.
func (s *PgxStore) Insert(ctx context.Context, collection string, fields map[string]any) (domain.Record, error) {
	sql, args, err := buildInsert(collection, fields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectOneRow(rows, collectRecord)
}

// UpdateByID applies a partial update and returns the updated row, or
// (nil, nil) when the key does not exist.
func (s *PgxStore) UpdateByID(ctx context.Context, collection string, id any, fields map[string]any) (domain.Record, error) {
	sql, args, err := buildUpdate(collection, id, fields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	record, err := pgx.CollectOneRow(rows, collectRecord)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FetchByID returns the row with the given key, or (nil, nil) when absent.
func (s *PgxStore) FetchByID(ctx context.Context, collection string, id any) (domain.Record, error) {
	if err := checkIdent(collection); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, "SELECT * FROM "+collection+" WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	record, err := pgx.CollectOneRow(rows, collectRecord)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func collectRecord(row pgx.CollectableRow) (domain.Record, error) {
	m, err := pgx.RowToMap(row)
	if err != nil {
		return nil, err
	}
	return domain.Record(m), nil
}
