package cqldb

import (
	"testing"

	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{name: "nil"},
		{name: "number", in: 42, want: float64(42)},
		{name: "string", in: "on", want: "on"},
		{name: "object", in: map[string]interface{}{"a": true}, want: map[string]interface{}{"a": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := encodeValue(tt.in)
			require.NoError(t, err)
			got, err := decodeValue(s)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
	_, err := decodeValue("{")
	require.Error(t, err)
}

func TestSelectMappings(t *testing.T) {
	q, values := selectMappings("assethub.mappings", store.MappingQuery{AssetID: "a", AttributeID: "x"})
	require.Contains(t, q, "from assethub.mappings where assetid=? and attributeid=?")
	require.Equal(t, []interface{}{"a", "x"}, values)

	q, values = selectMappings("assethub.mappings", store.MappingQuery{})
	require.NotContains(t, q, "where")
	require.Empty(t, values)
}
