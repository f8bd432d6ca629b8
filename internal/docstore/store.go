// Package docstore defines the document database contract the booking services
// run against: per-document reads, predicate queries, and multi-document atomic
// commits guarded by field-level preconditions.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("precondition failed")
)

type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Commit applies every write or none of them. It returns ErrConflict when a
	// precondition does not hold at commit time, when a create targets an
	// existing document, or when an update targets a missing one.
	Commit(ctx context.Context, writes []Write, preconditions []Precondition) error
}

type Document struct {
	Collection string
	ID         string
	Fields     map[string]any
}

func (d *Document) Has(field string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Fields[field]
	return ok
}

// Int returns the field as an integer, 0 when missing or not numeric.
func (d *Document) Int(field string) int64 {
	if d == nil {
		return 0
	}
	switch v := Normalize(d.Fields[field]).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (d *Document) String(field string) string {
	if d == nil {
		return ""
	}
	if v, ok := d.Fields[field].(string); ok {
		return v
	}
	return ""
}

// Time accepts native timestamps and the text form written by backends that
// serialise documents as JSON.
func (d *Document) Time(field string) time.Time {
	if d == nil {
		return time.Time{}
	}
	switch v := d.Fields[field].(type) {
	case time.Time:
		return v.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return parsed.UTC()
	default:
		return time.Time{}
	}
}

type Operator string

const (
	OpEqual          Operator = "=="
	OpGreaterOrEqual Operator = ">="
)

type Filter struct {
	Field string
	Op    Operator
	Value any
}

type Query struct {
	Filters []Filter
	OrderBy string
	Limit   int
}

func Where(field string, op Operator, value any) Query {
	return Query{Filters: []Filter{{Field: field, Op: op, Value: value}}}
}

func (q Query) And(field string, op Operator, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) Ordered(field string) Query {
	q.OrderBy = field
	return q
}

func (q Query) Validate() error {
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("docstore: filter without field")
		}
		switch f.Op {
		case OpEqual, OpGreaterOrEqual:
		default:
			return fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("docstore: negative limit")
	}
	return nil
}

type WriteOp int

const (
	// OpCreate inserts a new document and conflicts when it already exists.
	OpCreate WriteOp = iota + 1
	// OpSet replaces the whole document, creating it when missing.
	OpSet
	// OpUpdate merges fields into an existing document.
	OpUpdate
)

func (op WriteOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

type Write struct {
	Op         WriteOp
	Collection string
	ID         string
	Fields     map[string]any
}

func Create(collection, id string, fields map[string]any) Write {
	return Write{Op: OpCreate, Collection: collection, ID: id, Fields: fields}
}

func Set(collection, id string, fields map[string]any) Write {
	return Write{Op: OpSet, Collection: collection, ID: id, Fields: fields}
}

func Update(collection, id string, fields map[string]any) Write {
	return Write{Op: OpUpdate, Collection: collection, ID: id, Fields: fields}
}

type CheckKind int

const (
	CheckFieldEquals CheckKind = iota + 1
	CheckExists
	CheckNotExists
)

type Precondition struct {
	Kind       CheckKind
	Collection string
	ID         string
	Field      string
	Expected   any
}

func FieldEquals(collection, id, field string, expected any) Precondition {
	return Precondition{Kind: CheckFieldEquals, Collection: collection, ID: id, Field: field, Expected: expected}
}

func Exists(collection, id string) Precondition {
	return Precondition{Kind: CheckExists, Collection: collection, ID: id}
}

func NotExists(collection, id string) Precondition {
	return Precondition{Kind: CheckNotExists, Collection: collection, ID: id}
}

// Holds evaluates the precondition against the current state of its document;
// doc is nil when the document does not exist.
func (p Precondition) Holds(doc *Document) bool {
	switch p.Kind {
	case CheckExists:
		return doc != nil
	case CheckNotExists:
		return doc == nil
	case CheckFieldEquals:
		if doc == nil {
			return false
		}
		current, ok := doc.Fields[p.Field]
		if !ok {
			return p.Expected == nil
		}
		return Equal(current, p.Expected)
	default:
		return false
	}
}

func ValidateWrites(writes []Write) error {
	for _, w := range writes {
		if w.Collection == "" || w.ID == "" {
			return fmt.Errorf("docstore: %s write without collection or id", w.Op)
		}
		switch w.Op {
		case OpCreate, OpSet, OpUpdate:
		default:
			return fmt.Errorf("docstore: unknown write op %d", w.Op)
		}
	}
	return nil
}
