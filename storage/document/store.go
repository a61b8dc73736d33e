// Package document provides an in-memory DocumentStore backend. It mirrors
// the semantics the services are written against: per-document atomicity,
// equality/range/IN filters, ordering, subcollection group queries and
// all-or-nothing batch writes. Handy for tests and single-process deploys.
package document

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]core.Document
}

var _ core.DocumentStore = (*Store)(nil) // interface compliance check

func Open() *Store {
	return &Store{collections: make(map[string]map[string]core.Document)}
}

func (s *Store) Get(_ context.Context, collection, id string) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, core.ErrDocNotFound
	}
	doc, ok := col[id]
	if !ok {
		return nil, core.ErrDocNotFound
	}
	return annotate(doc, collection, id), nil
}

func (s *Store) Query(_ context.Context, collection string, q core.Query) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return runQuery(s.matchDocs([]string{collection}, q), q)
}

func (s *Store) QueryGroup(_ context.Context, leaf string, q core.Query) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string
	for path := range s.collections {
		if path == leaf || strings.HasSuffix(path, "/"+leaf) {
			paths = append(paths, path)
		}
	}
	return runQuery(s.matchDocs(paths, q), q)
}

func (s *Store) Set(_ context.Context, collection, id string, fields core.Document) error {
	if collection == "" || id == "" {
		return errors.New("collection and id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(collection, id, fields)
	return nil
}

func (s *Store) Update(_ context.Context, collection, id string, fields core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return core.ErrDocNotFound
	}
	doc, ok := col[id]
	if !ok {
		return core.ErrDocNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// Delete is idempotent: removing a missing document succeeds.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[collection]; ok {
		delete(col, id)
	}
	return nil
}

// BatchWrite applies all writes under one lock; a malformed write fails the
// whole batch before anything is applied.
func (s *Store) BatchWrite(_ context.Context, writes []core.Write) error {
	for _, w := range writes {
		if w.Collection == "" || w.ID == "" {
			return errors.New("batch write: collection and id are required")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		s.set(w.Collection, w.ID, w.Fields)
	}
	return nil
}

func (s *Store) set(collection, id string, fields core.Document) {
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]core.Document)
		s.collections[collection] = col
	}
	col[id] = copyDoc(fields)
}

// matchDocs collects annotated copies of every document in paths that
// satisfies all the query filters. Callers must hold the read lock.
func (s *Store) matchDocs(paths []string, q core.Query) []core.Document {
	var out []core.Document
	for _, path := range paths {
		for id, doc := range s.collections[path] {
			annotated := annotate(doc, path, id)
			if matchesAll(annotated, q.Filters) {
				out = append(out, annotated)
			}
		}
	}
	return out
}

func runQuery(docs []core.Document, q core.Query) ([]core.Document, error) {
	for _, f := range q.Filters {
		if f.Op == core.OpIn {
			ids, ok := f.Value.([]string)
			if !ok {
				return nil, errors.Errorf("in filter on %q requires []string", f.Field)
			}
			if len(ids) > core.InOpLimit {
				return nil, errors.Errorf("in filter on %q exceeds %d values", f.Field, core.InOpLimit)
			}
		}
	}

	sortDocs(docs, q.OrderBy)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func matchesAll(doc core.Document, filters []core.Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc core.Document, f core.Filter) bool {
	val, ok := doc[f.Field]
	if !ok {
		return false
	}
	switch f.Op {
	case core.OpEq:
		return equalValues(val, f.Value)
	case core.OpIn:
		ids, ok := f.Value.([]string)
		if !ok {
			return false
		}
		s, ok := val.(string)
		if !ok {
			return false
		}
		for _, id := range ids {
			if s == id {
				return true
			}
		}
		return false
	case core.OpGte:
		cmp, ok := compareValues(val, f.Value)
		return ok && cmp >= 0
	case core.OpLt:
		cmp, ok := compareValues(val, f.Value)
		return ok && cmp < 0
	}
	return false
}

func equalValues(a, b interface{}) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

// compareValues orders two field values of the same shape; the bool result
// is false for incomparable pairs.
func compareValues(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case av.Before(bv):
			return -1, true
		case av.After(bv):
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case float64:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloats(av, bv), true
	case int64:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloats(float64(av), bv), true
	case int:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloats(float64(av), bv), true
	}
	return 0, false
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// sortDocs orders by the requested fields, falling back to document id so
// results are deterministic.
func sortDocs(docs []core.Document, orderBy []core.Order) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, ord := range orderBy {
			cmp, ok := compareValues(docs[i][ord.Field], docs[j][ord.Field])
			if !ok || cmp == 0 {
				continue
			}
			if ord.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		li, _ := docs[i].String(core.DocID)
		lj, _ := docs[j].String(core.DocID)
		return li < lj
	})
}

// annotate returns a copy of doc carrying the reserved id/collection fields.
func annotate(doc core.Document, collection, id string) core.Document {
	out := copyDoc(doc)
	out[core.DocID] = id
	out[core.DocCollection] = collection
	return out
}

func copyDoc(doc core.Document) core.Document {
	out := make(core.Document, len(doc)+2)
	for k, v := range doc {
		if k == core.DocID || k == core.DocCollection {
			continue // reserved fields are never stored
		}
		out[k] = v
	}
	return out
}
