package filter_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/query/filter"
	"github.com/stretchr/testify/require"
)

var (
	nameField      = filter.Field{Name: "name", Type: filter.String}
	assetIDField   = filter.Field{Name: "asset_id", Key: "assetId", Type: filter.String}
	powerField     = filter.Field{Name: "power", Type: filter.Number}
	timestampField = filter.Field{Name: "timestamp", Type: filter.Time}
	onlineField    = filter.Field{Name: "online", Type: filter.Bool}

	testSchema = filter.NewSchema(nameField, assetIDField, powerField, timestampField, onlineField)
)

func TestCompileDropsUnknown(t *testing.T) {
	got := filter.Compile(testSchema, filter.KwargsFromMap(map[string]interface{}{
		"bogus__bad": 1,
		"name":       "x",
	}))
	require.Equal(t, []filter.Predicate{filter.Equals{F: nameField, Value: "x"}}, got)
}

func TestCompile(t *testing.T) {
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		kwargs filter.Kwargs
		want   []filter.Predicate
	}{
		{name: "empty", want: []filter.Predicate{}},
		{
			name:   "document key",
			kwargs: filter.Kwargs{{Key: "asset_id", Value: "inv-1"}},
			want:   []filter.Predicate{filter.Equals{F: assetIDField, Value: "inv-1"}},
		},
		{
			name: "range",
			kwargs: filter.Kwargs{
				{Key: "timestamp__gte", Value: "2024-05-01T00:00:00Z"},
				{Key: "timestamp__lte", Value: ts.Add(time.Hour)},
			},
			want: []filter.Predicate{
				filter.Gte{F: timestampField, Value: ts},
				filter.Lte{F: timestampField, Value: ts.Add(time.Hour)},
			},
		},
		{
			name:   "in from comma separated string",
			kwargs: filter.Kwargs{{Key: "power__in", Value: "1,2.5"}},
			want:   []filter.Predicate{filter.In{F: powerField, Values: []interface{}{1.0, 2.5}}},
		},
		{
			name:   "in from list",
			kwargs: filter.Kwargs{{Key: "name__in", Value: []interface{}{"a", "b"}}},
			want:   []filter.Predicate{filter.In{F: nameField, Values: []interface{}{"a", "b"}}},
		},
		{
			name: "contains and ilike",
			kwargs: filter.Kwargs{
				{Key: "name__contains", Value: "Inv"},
				{Key: "name__ilike", Value: "inv"},
			},
			want: []filter.Predicate{
				filter.Contains{F: nameField, Substring: "Inv"},
				filter.IContains{F: nameField, Substring: "inv"},
			},
		},
		{
			name: "last value wins at first position",
			kwargs: filter.Kwargs{
				{Key: "name", Value: "first"},
				{Key: "power__gte", Value: 1},
				{Key: "name", Value: "second"},
			},
			want: []filter.Predicate{
				filter.Equals{F: nameField, Value: "second"},
				filter.Gte{F: powerField, Value: 1.0},
			},
		},
		{
			name: "uncoercible values are dropped",
			kwargs: filter.Kwargs{
				{Key: "power", Value: "high"},
				{Key: "timestamp__gte", Value: "yesterday"},
				{Key: "online", Value: "maybe"},
				{Key: "power__in", Value: "1,x"},
				{Key: "power__contains", Value: "1"},
			},
			want: []filter.Predicate{},
		},
		{
			name: "bool and number",
			kwargs: filter.Kwargs{
				{Key: "online", Value: "true"},
				{Key: "power__lte", Value: int64(7)},
			},
			want: []filter.Predicate{
				filter.Equals{F: onlineField, Value: true},
				filter.Lte{F: powerField, Value: 7.0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Compile(testSchema, tt.kwargs)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key    string
		field  string
		op     filter.Op
		wantOK bool
	}{
		{key: "name", field: "name", op: filter.OpEquals, wantOK: true},
		{key: "name__in", field: "name", op: filter.OpIn, wantOK: true},
		{key: "timestamp__gte", field: "timestamp", op: filter.OpGte, wantOK: true},
		{key: "name__ilike", field: "name", op: filter.OpIContains, wantOK: true},
		{key: "name__regex", field: "name__regex", op: filter.OpEquals},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			field, op, ok := filter.ParseKey(tt.key)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.field, field)
			require.Equal(t, tt.op, op)
		})
	}
}

func TestParseQuery(t *testing.T) {
	kwargs, err := filter.ParseQuery("name=b&asset_id=a%20b&name=c&flag")
	require.NoError(t, err)
	require.Equal(t, filter.Kwargs{
		{Key: "name", Value: "b"},
		{Key: "asset_id", Value: "a b"},
		{Key: "name", Value: "c"},
		{Key: "flag", Value: ""},
	}, kwargs)

	v, ok := kwargs.Get("name")
	require.True(t, ok)
	require.Equal(t, "c", v)
	_, ok = kwargs.Get("missing")
	require.False(t, ok)
	require.Equal(t, filter.Kwargs{{Key: "asset_id", Value: "a b"}, {Key: "flag", Value: ""}}, kwargs.Without("name"))

	_, err = filter.ParseQuery("name=%zz")
	require.Error(t, err)
}

func TestKwargsFromMap(t *testing.T) {
	kwargs := filter.KwargsFromMap(map[string]interface{}{"b": 1, "a": 2, "c": 3})
	require.Equal(t, filter.Kwargs{{Key: "a", Value: 2}, {Key: "b", Value: 1}, {Key: "c", Value: 3}}, kwargs)
}

func TestSchemaFields(t *testing.T) {
	fields := testSchema.Fields()
	require.Len(t, fields, 5)
	require.Equal(t, "asset_id", fields[0].Name)
	require.Equal(t, "assetId", fields[0].DocumentKey())
	require.Equal(t, "name", nameField.DocumentKey())
}
