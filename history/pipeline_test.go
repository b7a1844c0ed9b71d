package history_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/history"
	pkgTime "github.com/plgd-dev/assethub/pkg/time"
	"github.com/plgd-dev/assethub/telemetry/store"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func stageNames(t *testing.T, p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, s := range p {
		require.Len(t, s, 1)
		names = append(names, s[0].Key)
	}
	return names
}

func stageValue(t *testing.T, p mongo.Pipeline, i int) bson.D {
	v, ok := p[i][0].Value.(bson.D)
	require.True(t, ok)
	return v
}

func telemetryResource(t *testing.T) store.Resource {
	r, ok := store.LookupResource(store.TelemetryResource)
	require.True(t, ok)
	return r
}

func TestBuildPipelineShape(t *testing.T) {
	params := history.PipelineParams{
		AssetID: "site-1",
		Ticks:   pkgTime.Ticks(t0, t0.Add(10*time.Second), 5*time.Second),
		From:    t0,
		To:      t0.Add(10 * time.Second),
		Cadence: 5 * time.Second,
		Columns: history.Columns{
			Sources: []history.Source{
				{AssetID: "dev-1", Channels: []history.Channel{{Name: "power", Path: "ac.p"}}},
				{AssetID: "dev-2", Channels: []history.Channel{{Name: "soc", Path: "soc"}}},
			},
			Literals: []history.Literal{{Name: "capacity", Value: 250.0}},
		},
		Resource: telemetryResource(t),
	}
	p := history.BuildPipeline(params)
	require.Equal(t, []string{
		"$documents", "$unionWith", "$unionWith", "$set", "$sort", "$group", "$replaceRoot", "$unset", "$set", "$sort",
	}, stageNames(t, p))

	grid, ok := p[0][0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, grid, 3)

	union := stageValue(t, p, 1)
	require.Equal(t, bson.E{Key: "coll", Value: store.TelemetryResource}, union[0])
	slice, ok := union[1].Value.(mongo.Pipeline)
	require.True(t, ok)
	require.Equal(t, []string{"$match", "$project"}, stageNames(t, slice))
	require.Equal(t, bson.D{
		{Key: "assetId", Value: bson.D{{Key: "$eq", Value: "dev-1"}}},
		{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: t0}, {Key: "$lte", Value: t0.Add(10 * time.Second)}}},
	}, slice[0][0].Value)
	require.Equal(t, bson.D{
		{Key: "_id", Value: 0},
		{Key: "timestamp", Value: 1},
		{Key: "assetId", Value: bson.D{{Key: "$literal", Value: "site-1"}}},
		{Key: "power", Value: "$ac.p"},
	}, slice[1][0].Value)

	truncate := stageValue(t, p, 3)
	require.Equal(t, "_ts", truncate[0].Key)
	require.Equal(t, bson.D{{Key: "$dateTrunc", Value: bson.D{
		{Key: "date", Value: "$timestamp"},
		{Key: "unit", Value: "second"},
		{Key: "binSize", Value: int64(5)},
	}}}, truncate[1].Value)

	require.Equal(t, bson.D{{Key: "capacity", Value: bson.D{{Key: "$literal", Value: 250.0}}}}, stageValue(t, p, 8))
	require.Equal(t, bson.D{{Key: "timestamp", Value: -1}}, stageValue(t, p, 9))
}

func TestBuildPipelineDeterministic(t *testing.T) {
	params := history.PipelineParams{
		AssetID:  "site-1",
		Ticks:    []time.Time{t0},
		From:     t0,
		To:       t0,
		Cadence:  time.Minute,
		Resource: telemetryResource(t),
	}
	require.Equal(t, history.BuildPipeline(params), history.BuildPipeline(params))
	require.Equal(t, []string{"$documents", "$set", "$sort", "$group", "$replaceRoot", "$unset", "$sort"}, stageNames(t, history.BuildPipeline(params)))
}

func TestBuildPipelineTruncation(t *testing.T) {
	tests := []struct {
		name     string
		cadence  time.Duration
		legacy   bool
		operator string
	}{
		{name: "divides day", cadence: 15 * time.Minute, operator: "$dateTrunc"},
		{name: "does not divide day", cadence: 7 * time.Second, operator: "$subtract"},
		{name: "legacy", cadence: 15 * time.Minute, legacy: true, operator: "$add"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := history.BuildPipeline(history.PipelineParams{
				AssetID:          "site-1",
				Ticks:            []time.Time{t0},
				From:             t0,
				To:               t0,
				Cadence:          tt.cadence,
				Resource:         telemetryResource(t),
				LegacyTruncation: tt.legacy,
			})
			truncate := stageValue(t, p, 1)
			expr, ok := truncate[1].Value.(bson.D)
			require.True(t, ok)
			require.Equal(t, tt.operator, expr[0].Key)
		})
	}
}
