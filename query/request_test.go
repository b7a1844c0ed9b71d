package query_test

import (
	"testing"

	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/query"
	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	siteField      = filter.Field{Name: "site", Type: filter.String}
	powerField     = filter.Field{Name: "power", Type: filter.Number}
	timestampField = filter.Field{Name: "timestamp", Type: filter.Time}
	testSchema     = filter.NewSchema(siteField, powerField, timestampField)
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		kwargs  filter.Kwargs
		want    pipeline.Spec
		wantErr bool
	}{
		{
			name: "empty",
			want: pipeline.Spec{
				Predicates: []filter.Predicate{},
				Sort:       []pipeline.SortField{},
				Group:      pipeline.Group{Keys: []pipeline.GroupKey{}},
			},
		},
		{
			name: "reserved keys are not filters",
			kwargs: filter.Kwargs{
				{Key: "site", Value: "north"},
				{Key: query.LimitKey, Value: "10"},
				{Key: query.SkipKey, Value: "5"},
				{Key: query.SortKey, Value: "-timestamp,bogus,power"},
			},
			want: pipeline.Spec{
				Predicates: []filter.Predicate{filter.Equals{F: siteField, Value: "north"}},
				Sort: []pipeline.SortField{
					{Field: timestampField, Descending: true},
					{Field: powerField},
				},
				Group:      pipeline.Group{Keys: []pipeline.GroupKey{}},
				Pagination: pipeline.Pagination{Skip: 5, Limit: 10},
			},
		},
		{
			name: "group",
			kwargs: filter.Kwargs{
				{Key: query.GroupIDKey, Value: "site,timestamp__day,power__day,timestamp__fortnight"},
				{Key: query.GroupFieldsKey, Value: []interface{}{"power__sum", "power__median", "site"}},
			},
			want: pipeline.Spec{
				Predicates: []filter.Predicate{},
				Sort:       []pipeline.SortField{},
				Group: pipeline.Group{
					Keys: []pipeline.GroupKey{
						{Field: siteField},
						{Field: timestampField, Unit: pipeline.Day},
					},
					Fields: []pipeline.Aggregate{
						{Field: powerField, Op: pipeline.Sum},
						{Field: siteField, Op: pipeline.Last},
					},
				},
			},
		},
		{
			name: "repeated group fields keep the last aggregate",
			kwargs: filter.Kwargs{
				{Key: query.GroupIDKey, Value: "site"},
				{Key: query.GroupFieldsKey, Value: "power__sum,site,power__max"},
			},
			want: pipeline.Spec{
				Predicates: []filter.Predicate{},
				Sort:       []pipeline.SortField{},
				Group: pipeline.Group{
					Keys: []pipeline.GroupKey{{Field: siteField}},
					Fields: []pipeline.Aggregate{
						{Field: powerField, Op: pipeline.Max},
						{Field: siteField, Op: pipeline.Last},
					},
				},
			},
		},
		{
			name:   "repeated group keys keep the last unit",
			kwargs: filter.Kwargs{{Key: query.GroupIDKey, Value: "timestamp__day,site,timestamp__hour"}},
			want: pipeline.Spec{
				Predicates: []filter.Predicate{},
				Sort:       []pipeline.SortField{},
				Group: pipeline.Group{
					Keys: []pipeline.GroupKey{
						{Field: timestampField, Unit: pipeline.Hour},
						{Field: siteField},
					},
					Fields: []pipeline.Aggregate{},
				},
			},
		},
		{
			name:   "group fields without keys",
			kwargs: filter.Kwargs{{Key: query.GroupFieldsKey, Value: "power__sum"}},
			want: pipeline.Spec{
				Predicates: []filter.Predicate{},
				Sort:       []pipeline.SortField{},
				Group:      pipeline.Group{Keys: []pipeline.GroupKey{}},
			},
		},
		{
			name:   "no limit",
			kwargs: filter.Kwargs{{Key: query.LimitKey, Value: -1}},
			want: pipeline.Spec{
				Predicates: []filter.Predicate{},
				Sort:       []pipeline.SortField{},
				Group:      pipeline.Group{Keys: []pipeline.GroupKey{}},
				Pagination: pipeline.Pagination{Limit: -1},
			},
		},
		{name: "invalid limit", kwargs: filter.Kwargs{{Key: query.LimitKey, Value: "ten"}}, wantErr: true},
		{name: "negative skip", kwargs: filter.Kwargs{{Key: query.SkipKey, Value: "-1"}}, wantErr: true},
		{name: "invalid sort", kwargs: filter.Kwargs{{Key: query.SortKey, Value: 3}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := query.ParseRequest(testSchema, tt.kwargs, log.NewNopLogger())
			if tt.wantErr {
				require.ErrorIs(t, err, query.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequestEmptyPipeline(t *testing.T) {
	spec, err := query.ParseRequest(testSchema, filter.Kwargs{
		{Key: query.LimitKey, Value: "-1"},
		{Key: query.SkipKey, Value: "0"},
	}, log.NewNopLogger())
	require.NoError(t, err)
	require.Empty(t, spec.Build())
}

func TestParseRequestRepeatedGroupNames(t *testing.T) {
	spec, err := query.ParseRequest(testSchema, filter.Kwargs{
		{Key: query.GroupIDKey, Value: "timestamp__day,timestamp__hour"},
		{Key: query.GroupFieldsKey, Value: "power__sum,power__max"},
	}, log.NewNopLogger())
	require.NoError(t, err)
	p := spec.Build()
	require.Len(t, p, 3)

	group, ok := p[0].Map()["$group"].(bson.D)
	require.True(t, ok)
	id, ok := group.Map()["_id"].(bson.D)
	require.True(t, ok)
	require.Len(t, id, 1)
	names := make([]string, 0, len(group))
	for _, e := range group {
		names = append(names, e.Key)
	}
	require.Equal(t, []string{"_id", "doc", "power"}, names)
	require.Equal(t, bson.D{{Key: "$max", Value: "$power"}}, group.Map()["power"])

	set, ok := p[1].Map()["$set"].(bson.D)
	require.True(t, ok)
	require.Len(t, set, 1)
}
