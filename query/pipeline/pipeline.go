package pipeline

import (
	"regexp"
	"sort"

	"github.com/plgd-dev/assethub/query/filter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StageKind enumerates the stages in the order they are emitted.
type StageKind int

const (
	StageMatch StageKind = iota
	StageGroup
	StageSet
	StageReplaceRoot
	StageSkip
	StageSort
	StageLimit
)

var stageOrder = [...]StageKind{StageMatch, StageGroup, StageSet, StageReplaceRoot, StageSkip, StageSort, StageLimit}

func (k StageKind) Operator() string {
	switch k {
	case StageMatch:
		return "$match"
	case StageGroup:
		return "$group"
	case StageSet:
		return "$set"
	case StageReplaceRoot:
		return "$replaceRoot"
	case StageSkip:
		return "$skip"
	case StageSort:
		return "$sort"
	case StageLimit:
		return "$limit"
	}
	return ""
}

// representativeKey holds the last document of a group bucket.
const representativeKey = "doc"

type SortField struct {
	Field      filter.Field
	Descending bool
}

// Unit truncates a time group key, Identity keeps the value.
type Unit string

const (
	Identity Unit = ""
	Year     Unit = "year"
	Month    Unit = "month"
	Week     Unit = "week"
	Day      Unit = "day"
	Hour     Unit = "hour"
	Minute   Unit = "minute"
	Second   Unit = "second"
)

func ParseUnit(s string) (Unit, bool) {
	switch Unit(s) {
	case Identity, Year, Month, Week, Day, Hour, Minute, Second:
		return Unit(s), true
	}
	return "", false
}

type GroupKey struct {
	Field filter.Field
	Unit  Unit
}

type AggregateOp string

const (
	Sum  AggregateOp = "sum"
	Min  AggregateOp = "min"
	Max  AggregateOp = "max"
	Avg  AggregateOp = "avg"
	Last AggregateOp = "last"
)

func ParseAggregateOp(s string) (AggregateOp, bool) {
	switch AggregateOp(s) {
	case Sum, Min, Max, Avg, Last:
		return AggregateOp(s), true
	}
	return "", false
}

// Aggregate is computed per bucket and overlaid onto the field of the representative row.
type Aggregate struct {
	Field filter.Field
	Op    AggregateOp
}

type Group struct {
	Keys   []GroupKey
	Fields []Aggregate
}

type Pagination struct {
	// Skip is applied when positive.
	Skip int64
	// Limit is applied when positive.
	Limit int64
}

type Spec struct {
	Predicates []filter.Predicate
	Sort       []SortField
	Group      Group
	Pagination Pagination
}

// Build returns the pipeline of the spec. Stages with empty parameters are omitted.
func Build(predicates []filter.Predicate, sort []SortField, group Group, pagination Pagination) mongo.Pipeline {
	return Spec{
		Predicates: predicates,
		Sort:       sort,
		Group:      group,
		Pagination: pagination,
	}.Build()
}

func (s Spec) Build() mongo.Pipeline {
	p := mongo.Pipeline{}
	for _, kind := range stageOrder {
		body, ok := s.stage(kind)
		if !ok {
			continue
		}
		p = append(p, bson.D{{Key: kind.Operator(), Value: body}})
	}
	return p
}

func (s Spec) stage(kind StageKind) (interface{}, bool) {
	grouped := len(s.Group.Keys) > 0
	switch kind {
	case StageMatch:
		if len(s.Predicates) == 0 {
			return nil, false
		}
		return Match(s.Predicates), true
	case StageGroup:
		if !grouped {
			return nil, false
		}
		return groupBody(s.Group), true
	case StageSet:
		if !grouped || len(s.Group.Fields) == 0 {
			return nil, false
		}
		return overlayBody(s.Group.Fields), true
	case StageReplaceRoot:
		if !grouped {
			return nil, false
		}
		return bson.D{{Key: "newRoot", Value: "$" + representativeKey}}, true
	case StageSkip:
		if s.Pagination.Skip <= 0 {
			return nil, false
		}
		return s.Pagination.Skip, true
	case StageSort:
		if len(s.Sort) == 0 {
			return nil, false
		}
		return Sort(s.Sort), true
	case StageLimit:
		if s.Pagination.Limit <= 0 {
			return nil, false
		}
		return s.Pagination.Limit, true
	}
	return nil, false
}

func setOperator(ops bson.D, key string, value interface{}) bson.D {
	for i := range ops {
		if ops[i].Key == key {
			ops[i].Value = value
			return ops
		}
	}
	return append(ops, bson.E{Key: key, Value: value})
}

// Match returns the body of a $match stage. Predicates on the same document
// key are merged into one operator document.
func Match(predicates []filter.Predicate) bson.D {
	match := bson.D{}
	index := make(map[string]int, len(predicates))
	for _, p := range predicates {
		key := p.Field().DocumentKey()
		i, ok := index[key]
		if !ok {
			i = len(match)
			index[key] = i
			match = append(match, bson.E{Key: key, Value: bson.D{}})
		}
		ops := match[i].Value.(bson.D)
		switch v := p.(type) {
		case filter.Equals:
			ops = setOperator(ops, "$eq", v.Value)
		case filter.In:
			ops = setOperator(ops, "$in", v.Values)
		case filter.Gte:
			ops = setOperator(ops, "$gte", v.Value)
		case filter.Lte:
			ops = setOperator(ops, "$lte", v.Value)
		case filter.Contains:
			ops = setOperator(ops, "$regex", regexp.QuoteMeta(v.Substring))
		case filter.IContains:
			ops = setOperator(ops, "$regex", regexp.QuoteMeta(v.Substring))
			ops = setOperator(ops, "$options", "i")
		}
		match[i].Value = ops
	}
	return match
}

func groupKeyExpr(k GroupKey) interface{} {
	ref := "$" + k.Field.DocumentKey()
	if k.Unit == Identity {
		return ref
	}
	return bson.D{{Key: "$dateTrunc", Value: bson.D{
		{Key: "date", Value: ref},
		{Key: "unit", Value: string(k.Unit)},
	}}}
}

func sortedAggregates(fields []Aggregate) []Aggregate {
	sorted := make([]Aggregate, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Field.Name < sorted[j].Field.Name
	})
	return sorted
}

func groupBody(g Group) bson.D {
	id := bson.D{}
	for _, k := range g.Keys {
		id = append(id, bson.E{Key: k.Field.Name, Value: groupKeyExpr(k)})
	}
	body := bson.D{
		{Key: "_id", Value: id},
		{Key: representativeKey, Value: bson.D{{Key: "$last", Value: "$$ROOT"}}},
	}
	for _, a := range sortedAggregates(g.Fields) {
		body = append(body, bson.E{
			Key:   a.Field.Name,
			Value: bson.D{{Key: "$" + string(a.Op), Value: "$" + a.Field.DocumentKey()}},
		})
	}
	return body
}

func overlayBody(fields []Aggregate) bson.D {
	set := bson.D{}
	for _, a := range sortedAggregates(fields) {
		set = append(set, bson.E{Key: representativeKey + "." + a.Field.DocumentKey(), Value: "$" + a.Field.Name})
	}
	return set
}

// Sort returns the body of a $sort stage.
func Sort(fields []SortField) bson.D {
	d := bson.D{}
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		d = setOperator(d, f.Field.DocumentKey(), dir)
	}
	return d
}
