package mongodb

import (
	"testing"

	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestToMappingsFilter(t *testing.T) {
	tests := []struct {
		name  string
		query store.MappingQuery
		want  bson.M
	}{
		{name: "all live", want: bson.M{store.DeletedKey: false}},
		{name: "including deleted", query: store.MappingQuery{IncludeDeleted: true}, want: bson.M{}},
		{
			name:  "pair",
			query: store.MappingQuery{AssetID: "a", AttributeID: "x"},
			want:  bson.M{store.DeletedKey: false, store.AssetIDKey: "a", store.AttributeIDKey: "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, toMappingsFilter(tt.query))
		})
	}
}

func TestUniqueIndexIsPartial(t *testing.T) {
	require.NotNil(t, assetIDAttributeIDUniqueIndex.Options.Unique)
	require.True(t, *assetIDAttributeIDUniqueIndex.Options.Unique)
	require.Equal(t, bson.D{{Key: store.DeletedKey, Value: false}}, assetIDAttributeIDUniqueIndex.Options.PartialFilterExpression)
}
