package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromBSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()
	got := fromBSON(bson.M{
		"_id":       oid,
		"timestamp": primitive.NewDateTimeFromTime(ts),
		"nested":    bson.D{{Key: "a", Value: bson.A{int32(1), "x"}}},
		"power":     3.5,
	})
	require.Equal(t, map[string]interface{}{
		"_id":       oid.Hex(),
		"timestamp": ts,
		"nested":    map[string]interface{}{"a": []interface{}{int32(1), "x"}},
		"power":     3.5,
	}, got)
}
