package filter

import (
	"strings"

	"github.com/plgd-dev/assethub/pkg/log"
)

const opSeparator = "__"

type compileOptions struct {
	logger log.Logger
}

type Option func(*compileOptions)

// WithLogger logs the dropped kwargs at debug level.
func WithLogger(logger log.Logger) Option {
	return func(o *compileOptions) {
		o.logger = logger
	}
}

// ParseKey splits "field__op" into the field name and the operator.
// A key without a known operator suffix is an equality on the whole key.
func ParseKey(key string) (string, Op, bool) {
	idx := strings.LastIndex(key, opSeparator)
	if idx < 0 {
		return key, OpEquals, true
	}
	op, ok := parseOp(key[idx+len(opSeparator):])
	if !ok {
		return key, OpEquals, false
	}
	return key[:idx], op, true
}

type slot struct {
	field Field
	op    Op
	value interface{}
}

func makePredicate(s slot) (Predicate, bool) {
	f := s.field
	switch s.op {
	case OpIn:
		values, ok := coerceList(f.Type, s.value)
		if !ok {
			return nil, false
		}
		return In{F: f, Values: values}, true
	case OpContains, OpIContains:
		if f.Type != String {
			return nil, false
		}
		v, ok := coerceString(s.value)
		if !ok {
			return nil, false
		}
		if s.op == OpContains {
			return Contains{F: f, Substring: v.(string)}, true
		}
		return IContains{F: f, Substring: v.(string)}, true
	}
	v, ok := Coerce(f.Type, s.value)
	if !ok {
		return nil, false
	}
	switch s.op {
	case OpGte:
		return Gte{F: f, Value: v}, true
	case OpLte:
		return Lte{F: f, Value: v}, true
	}
	return Equals{F: f, Value: v}, true
}

// Compile turns kwargs into predicates over the fields of the schema.
// Unknown fields, unknown operators and values which cannot be converted to
// the field type are dropped. When a (field, operator) pair repeats, the last
// value is used at the position of the first occurrence.
func Compile(schema Schema, kwargs Kwargs, opts ...Option) []Predicate {
	o := compileOptions{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	type slotKey struct {
		name string
		op   Op
	}
	slots := make([]slot, 0, len(kwargs))
	index := make(map[slotKey]int, len(kwargs))
	for _, kw := range kwargs {
		name, op, ok := ParseKey(kw.Key)
		if !ok {
			o.logger.Debugf("dropping filter '%v': unknown operator", kw.Key)
			continue
		}
		field, ok := schema.Field(name)
		if !ok {
			o.logger.Debugf("dropping filter '%v': unknown field", kw.Key)
			continue
		}
		k := slotKey{name: name, op: op}
		if i, ok := index[k]; ok {
			slots[i].value = kw.Value
			continue
		}
		index[k] = len(slots)
		slots = append(slots, slot{field: field, op: op, value: kw.Value})
	}
	predicates := make([]Predicate, 0, len(slots))
	for _, s := range slots {
		p, ok := makePredicate(s)
		if !ok {
			o.logger.Debugf("dropping filter '%v%v%v': value '%v' is not a %v", s.field.Name, opSeparator, s.op, s.value, s.field.Type)
			continue
		}
		predicates = append(predicates, p)
	}
	return predicates
}
