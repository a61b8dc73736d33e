package core

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Top-level collections. Photos live in per-student subcollections, see
// PhotoCollection.
const (
	BoardCollection      = "boards"
	StudentCollection    = "students"
	ViewRecordCollection = "view_records"
	ActivityCollection   = "activity"

	// PhotoCollectionLeaf is the leaf name of every per-student photo
	// subcollection; QueryGroup matches against it.
	PhotoCollectionLeaf = "photos"
)

// PhotoCollection returns the subcollection path holding a student's photos.
func PhotoCollection(studentID string) string {
	return StudentCollection + "/" + studentID + "/" + PhotoCollectionLeaf
}

// InOpLimit is the maximum number of values a single OpIn filter may carry.
// Callers querying larger id sets must batch.
const InOpLimit = 10

// Reserved fields injected into Query/QueryGroup results: the document id
// and the full collection path the document lives in. Neither is stored as a
// regular field, and both are filterable.
const (
	DocID         = "_id"
	DocCollection = "_collection"
)

// ErrDocNotFound is returned by DocumentStore.Get for a missing document.
// Services map it to the appropriate domain Kind.
var ErrDocNotFound = errors.New("document not found")

type (
	// Document is a decoded store record. Field values are restricted to
	// string, bool, int64, float64, time.Time and []string.
	Document map[string]interface{}

	FilterOp string

	Filter struct {
		Field string
		Op    FilterOp
		Value interface{}
	}

	Order struct {
		Field string
		Desc  bool
	}

	Query struct {
		Filters []Filter
		OrderBy []Order
		Limit   int
	}

	// Write is one element of an atomic batch.
	Write struct {
		Collection string
		ID         string
		Fields     Document
	}

	// DocumentStore is the collection-oriented persistence API all services
	// write through. Only single-document operations and BatchWrite are
	// atomic; there are no cross-document transactions.
	DocumentStore interface {
		Get(ctx context.Context, collection, id string) (Document, error)
		Query(ctx context.Context, collection string, q Query) ([]Document, error)
		// QueryGroup queries across every subcollection whose path ends in
		// "/"+leaf (and the top-level collection named leaf, if any).
		QueryGroup(ctx context.Context, leaf string, q Query) ([]Document, error)
		Set(ctx context.Context, collection, id string, fields Document) error
		Update(ctx context.Context, collection, id string, fields Document) error
		Delete(ctx context.Context, collection, id string) error
		// BatchWrite commits all writes or none.
		BatchWrite(ctx context.Context, writes []Write) error
	}
)

const (
	OpEq  FilterOp = "=="
	OpIn  FilterOp = "in"
	OpGte FilterOp = ">="
	OpLt  FilterOp = "<"
)

func Eq(field string, value interface{}) Filter  { return Filter{field, OpEq, value} }
func In(field string, values []string) Filter    { return Filter{field, OpIn, values} }
func Gte(field string, value interface{}) Filter { return Filter{field, OpGte, value} }
func Lt(field string, value interface{}) Filter  { return Filter{field, OpLt, value} }

// Typed field accessors. A stored document whose field fails to decode is
// corrupt as far as the domain is concerned.

func (d Document) String(field string) (string, error) {
	v, ok := d[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", corruptField(field, v)
	}
	return s, nil
}

func (d Document) Bool(field string) (bool, error) {
	v, ok := d[field]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, corruptField(field, v)
	}
	return b, nil
}

func (d Document) Float(field string) (float64, error) {
	v, ok := d[field]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return 0, corruptField(field, d[field])
}

func (d Document) Time(field string) (time.Time, error) {
	v, ok := d[field]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, corruptField(field, v)
	}
	return t, nil
}

func corruptField(field string, value interface{}) error {
	return NewErrorf(KindDataCorruption, "field %q holds unexpected value %v", field, value)
}
