// Package pgstore implements docstore.Store on a PostgreSQL "documents" table
// holding one JSONB document per (collection, id).
package pgstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
)

// Timestamps are stored as fixed-width UTC text so that text comparison and
// ordering match chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var raw []byte
	if err := s.pool.QueryRow(ctx, query, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &docstore.Document{Collection: collection, ID: id, Fields: fields}, nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	query, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, docstore.Document{Collection: collection, ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) Commit(ctx context.Context, writes []docstore.Write, preconditions []docstore.Precondition) error {
	if err := docstore.ValidateWrites(writes); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, p := range preconditions {
		doc, err := lockDocument(ctx, tx, p.Collection, p.ID)
		if err != nil {
			return classify(err)
		}
		if !p.Holds(doc) {
			return fmt.Errorf("%w: %s/%s", docstore.ErrConflict, p.Collection, p.ID)
		}
	}

	for _, w := range writes {
		if err := applyWrite(ctx, tx, w); err != nil {
			return classify(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func lockDocument(ctx context.Context, tx pgx.Tx, collection, id string) (*docstore.Document, error) {
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
		FOR UPDATE
	`
	var raw []byte
	if err := tx.QueryRow(ctx, query, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	return &docstore.Document{Collection: collection, ID: id, Fields: fields}, nil
}

func applyWrite(ctx context.Context, tx pgx.Tx, w docstore.Write) error {
	data, err := encodeFields(w.Fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", w.Collection, w.ID, err)
	}

	var query string
	switch w.Op {
	case docstore.OpCreate:
		query = `
			INSERT INTO documents (collection, id, data)
			VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (collection, id) DO NOTHING
		`
	case docstore.OpSet:
		query = `
			INSERT INTO documents (collection, id, data)
			VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		`
	case docstore.OpUpdate:
		query = `
			UPDATE documents
			SET data = data || $3::jsonb, updated_at = NOW()
			WHERE collection = $1 AND id = $2
		`
	}

	tag, err := tx.Exec(ctx, query, w.Collection, w.ID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s/%s", docstore.ErrConflict, w.Op, w.Collection, w.ID)
	}
	return nil
}

func buildQuery(collection string, q docstore.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	args := []any{collection}
	whereParts := []string{"collection = $1"}

	for _, f := range q.Filters {
		value := encodeValue(f.Value)
		switch f.Op {
		case docstore.OpEqual:
			containment, err := json.Marshal(map[string]any{f.Field: value})
			if err != nil {
				return "", nil, err
			}
			args = append(args, string(containment))
			whereParts = append(whereParts, fmt.Sprintf("data @> $%d::jsonb", len(args)))
		case docstore.OpGreaterOrEqual:
			args = append(args, f.Field)
			fieldArg := len(args)
			args = append(args, value)
			if _, ok := value.(string); ok {
				whereParts = append(whereParts, fmt.Sprintf("data->>($%d::text) >= $%d::text", fieldArg, len(args)))
			} else {
				whereParts = append(whereParts, fmt.Sprintf("(data->>($%d::text))::numeric >= $%d", fieldArg, len(args)))
			}
		}
	}

	order := "id ASC"
	if q.OrderBy != "" {
		args = append(args, q.OrderBy)
		order = fmt.Sprintf("data->($%d::text) ASC, id ASC", len(args))
	}

	query := fmt.Sprintf(`
		SELECT id, data
		FROM documents
		WHERE %s
		ORDER BY %s
	`, strings.Join(whereParts, " AND "), order)
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	return query, args, nil
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(timeLayout)
	default:
		return docstore.Normalize(v)
	}
}

func encodeFields(fields map[string]any) (string, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = encodeValue(v)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeFields(raw []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	fields := make(map[string]any)
	if err := decoder.Decode(&fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		fields[k] = docstore.Normalize(v)
	}
	return fields, nil
}

// classify turns lock and uniqueness failures raised by concurrent commits
// into docstore.ErrConflict so callers retry them like stale preconditions.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%w: %s", docstore.ErrConflict, pgErr.Message)
		}
	}
	return err
}
