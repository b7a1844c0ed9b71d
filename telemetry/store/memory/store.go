// Package memory is a process local DocumentStore. It evaluates Find in
// memory and does not execute aggregation pipelines.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
	"github.com/plgd-dev/assethub/telemetry/store"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotSupported = errors.New("not supported by the memory store")

type Store struct {
	mutex       sync.RWMutex
	collections map[string][]store.Document
}

func New() *Store {
	return &Store{collections: make(map[string][]store.Document)}
}

func (s *Store) Insert(_ context.Context, collection string, docs []store.Document) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, d := range docs {
		c := make(store.Document, len(d))
		for k, v := range d {
			c[k] = v
		}
		s.collections[collection] = append(s.collections[collection], c)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, predicates []filter.Predicate, opts store.FindOptions) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	matched := make([]store.Document, 0, 16)
	for _, d := range s.collections[collection] {
		if matchAll(d, predicates) {
			matched = append(matched, d)
		}
	}
	s.mutex.RUnlock()
	if len(opts.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[i], matched[j], opts.Sort)
		})
	}
	if skip := opts.Pagination.Skip; skip > 0 {
		if skip >= int64(len(matched)) {
			return []store.Document{}, nil
		}
		matched = matched[skip:]
	}
	if limit := opts.Pagination.Limit; limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) Aggregate(context.Context, string, mongo.Pipeline) ([]store.Document, error) {
	return nil, ErrNotSupported
}

func (s *Store) AggregateDatabase(context.Context, mongo.Pipeline) ([]store.Document, error) {
	return nil, ErrNotSupported
}

func (s *Store) Close(context.Context) error {
	return nil
}

func matchAll(d store.Document, predicates []filter.Predicate) bool {
	for _, p := range predicates {
		if !match(d, p) {
			return false
		}
	}
	return true
}

func match(d store.Document, p filter.Predicate) bool {
	raw, ok := d.Get(p.Field().DocumentKey())
	if !ok {
		return false
	}
	v, ok := filter.Coerce(p.Field().Type, raw)
	if !ok {
		return false
	}
	switch pr := p.(type) {
	case filter.Equals:
		return compare(v, pr.Value) == 0
	case filter.In:
		for _, x := range pr.Values {
			if compare(v, x) == 0 {
				return true
			}
		}
		return false
	case filter.Gte:
		return compare(v, pr.Value) >= 0
	case filter.Lte:
		return compare(v, pr.Value) <= 0
	case filter.Contains:
		s, _ := v.(string)
		return strings.Contains(s, pr.Substring)
	case filter.IContains:
		s, _ := v.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(pr.Substring))
	}
	return false
}

// compare orders coerced values of the same field type. Mismatched types
// compare as unequal.
func compare(a, b interface{}) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return 2
}

func less(a, b store.Document, fields []pipeline.SortField) bool {
	for _, f := range fields {
		av, aok := a.Get(f.Field.DocumentKey())
		bv, bok := b.Get(f.Field.DocumentKey())
		if !aok || !bok {
			if aok == bok {
				continue
			}
			// missing values sort first
			return bok != f.Descending
		}
		ac, _ := filter.Coerce(f.Field.Type, av)
		bc, _ := filter.Coerce(f.Field.Type, bv)
		c := compare(ac, bc)
		if c == 0 || c == 2 {
			continue
		}
		if f.Descending {
			return c > 0
		}
		return c < 0
	}
	return false
}
