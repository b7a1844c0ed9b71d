package postgres

import (
	"testing"

	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/stretchr/testify/require"
)

func TestSelectMappings(t *testing.T) {
	tests := []struct {
		name      string
		query     store.MappingQuery
		wantWhere string
		wantArgs  []interface{}
	}{
		{name: "all live", wantWhere: " where not deleted order by id"},
		{name: "all", query: store.MappingQuery{IncludeDeleted: true}, wantWhere: " order by id"},
		{
			name:      "pair",
			query:     store.MappingQuery{AssetID: "a", AttributeID: "x"},
			wantWhere: " where asset_id = $1 and attribute_id = $2 and not deleted order by id",
			wantArgs:  []interface{}{"a", "x"},
		},
		{
			name:      "attribute",
			query:     store.MappingQuery{AttributeID: "x", IncludeDeleted: true},
			wantWhere: " where attribute_id = $1 order by id",
			wantArgs:  []interface{}{"x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := selectMappings(tt.query)
			require.Equal(t, selectMappingColumns+tt.wantWhere, q)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}
