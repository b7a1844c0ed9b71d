package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/plgd-dev/assethub/pkg/log"
	pkgStrings "github.com/plgd-dev/assethub/pkg/strings"
	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
)

// Reserved kwargs, they are never compiled as field filters.
const (
	LimitKey       = "limit_"
	SkipKey        = "skip_"
	SortKey        = "sort"
	GroupIDKey     = "group_id"
	GroupFieldsKey = "group_fields"
)

const (
	descendingPrefix = "-"
	separator        = "__"
)

var ErrInvalidRequest = errors.New("invalid request")

func parseInt(kwargs filter.Kwargs, key string) (int64, error) {
	v, ok := kwargs.Get(key)
	if !ok {
		return 0, nil
	}
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v('%v')", ErrInvalidRequest, key, val)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: %v('%v')", ErrInvalidRequest, key, v)
}

func listOf(kwargs filter.Kwargs, key string) ([]string, error) {
	v, ok := kwargs.Get(key)
	if !ok {
		return nil, nil
	}
	items, err := pkgStrings.ToSlice(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v('%v')", ErrInvalidRequest, key, v)
	}
	return items, nil
}

func parseSort(schema filter.Schema, items []string, logger log.Logger) []pipeline.SortField {
	fields := make([]pipeline.SortField, 0, len(items))
	for _, item := range items {
		name := strings.TrimPrefix(item, descendingPrefix)
		f, ok := schema.Field(name)
		if !ok {
			logger.Debugf("sort by unknown field '%v' ignored", name)
			continue
		}
		fields = append(fields, pipeline.SortField{Field: f, Descending: name != item})
	}
	return fields
}

// parseGroupKeys keeps one key per field: a later unit replaces an earlier one
// in its position.
func parseGroupKeys(schema filter.Schema, items []string, logger log.Logger) []pipeline.GroupKey {
	keys := make([]pipeline.GroupKey, 0, len(items))
	positions := make(map[string]int, len(items))
	for _, item := range items {
		name, unitName, _ := strings.Cut(item, separator)
		f, ok := schema.Field(name)
		if !ok {
			logger.Debugf("group by unknown field '%v' ignored", name)
			continue
		}
		unit, ok := pipeline.ParseUnit(unitName)
		if !ok {
			logger.Debugf("group by unknown unit '%v' of field '%v' ignored", unitName, name)
			continue
		}
		if unit != pipeline.Identity && f.Type != filter.Time {
			logger.Debugf("group by unit '%v' of non time field '%v' ignored", unitName, name)
			continue
		}
		if i, ok := positions[f.Name]; ok {
			logger.Debugf("group by field '%v' repeated, unit '%v' replaces '%v'", name, unit, keys[i].Unit)
			keys[i].Unit = unit
			continue
		}
		positions[f.Name] = len(keys)
		keys = append(keys, pipeline.GroupKey{Field: f, Unit: unit})
	}
	return keys
}

// parseAggregates keeps one aggregate per field, the last one wins.
func parseAggregates(schema filter.Schema, items []string, logger log.Logger) []pipeline.Aggregate {
	fields := make([]pipeline.Aggregate, 0, len(items))
	positions := make(map[string]int, len(items))
	for _, item := range items {
		name, opName, ok := strings.Cut(item, separator)
		if !ok {
			opName = string(pipeline.Last)
		}
		f, ok := schema.Field(name)
		if !ok {
			logger.Debugf("aggregate of unknown field '%v' ignored", name)
			continue
		}
		op, ok := pipeline.ParseAggregateOp(opName)
		if !ok {
			logger.Debugf("unknown aggregate '%v' of field '%v' ignored", opName, name)
			continue
		}
		if i, ok := positions[f.Name]; ok {
			logger.Debugf("aggregate of field '%v' repeated, '%v' replaces '%v'", name, op, fields[i].Op)
			fields[i].Op = op
			continue
		}
		positions[f.Name] = len(fields)
		fields = append(fields, pipeline.Aggregate{Field: f, Op: op})
	}
	return fields
}

// ParseRequest splits the reserved kwargs from the field filters and returns
// the pipeline spec of the request. Unknown fields are dropped. Malformed
// pagination or list values return ErrInvalidRequest.
func ParseRequest(schema filter.Schema, kwargs filter.Kwargs, logger log.Logger) (pipeline.Spec, error) {
	limit, err := parseInt(kwargs, LimitKey)
	if err != nil {
		return pipeline.Spec{}, err
	}
	skip, err := parseInt(kwargs, SkipKey)
	if err != nil {
		return pipeline.Spec{}, err
	}
	if skip < 0 {
		return pipeline.Spec{}, fmt.Errorf("%w: %v('%v') must not be negative", ErrInvalidRequest, SkipKey, skip)
	}
	sortItems, err := listOf(kwargs, SortKey)
	if err != nil {
		return pipeline.Spec{}, err
	}
	groupIDs, err := listOf(kwargs, GroupIDKey)
	if err != nil {
		return pipeline.Spec{}, err
	}
	groupFields, err := listOf(kwargs, GroupFieldsKey)
	if err != nil {
		return pipeline.Spec{}, err
	}
	group := pipeline.Group{Keys: parseGroupKeys(schema, groupIDs, logger)}
	if len(group.Keys) > 0 {
		group.Fields = parseAggregates(schema, groupFields, logger)
	}
	fields := kwargs.Without(LimitKey, SkipKey, SortKey, GroupIDKey, GroupFieldsKey)
	return pipeline.Spec{
		Predicates: filter.Compile(schema, fields, filter.WithLogger(logger)),
		Sort:       parseSort(schema, sortItems, logger),
		Group:      group,
		Pagination: pipeline.Pagination{Skip: skip, Limit: limit},
	}, nil
}
