package history

import (
	"time"

	pkgTime "github.com/plgd-dev/assethub/pkg/time"
	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
	"github.com/plgd-dev/assethub/telemetry/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const timestampRef = "$" + store.TimestampKey

// sliceFilter selects the documents of the source asset within [from, to].
func sliceFilter(schema filter.Schema, sourceAssetID string, from, to time.Time) []filter.Predicate {
	return filter.Compile(schema, filter.Kwargs{
		{Key: store.AssetIDField.Name, Value: sourceAssetID},
		{Key: store.TimestampField.Name + "__gte", Value: from},
		{Key: store.TimestampField.Name + "__lte", Value: to},
	})
}

func gridDocuments(assetID string, ticks []time.Time) bson.A {
	docs := make(bson.A, 0, len(ticks))
	for _, t := range ticks {
		docs = append(docs, bson.D{
			{Key: store.TimestampKey, Value: t},
			{Key: store.AssetIDKey, Value: assetID},
		})
	}
	return docs
}

func projection(assetID string, channels []Channel) bson.D {
	p := bson.D{
		{Key: store.IDKey, Value: 0},
		{Key: store.TimestampKey, Value: 1},
		{Key: store.AssetIDKey, Value: bson.D{{Key: "$literal", Value: assetID}}},
	}
	for _, ch := range channels {
		p = append(p, bson.E{Key: ch.Name, Value: "$" + ch.Path})
	}
	return p
}

func unionWith(collection string, p mongo.Pipeline) bson.D {
	return bson.D{{Key: "$unionWith", Value: bson.D{
		{Key: "coll", Value: collection},
		{Key: "pipeline", Value: p},
	}}}
}

// nativeTruncation bins by whole seconds anchored at 2000-01-01, which
// coincides with the start of every UTC day when the cadence divides a day.
func nativeTruncation(cadence time.Duration) interface{} {
	return bson.D{{Key: "$dateTrunc", Value: bson.D{
		{Key: "date", Value: timestampRef},
		{Key: "unit", Value: "second"},
		{Key: "binSize", Value: int64(cadence / time.Second)},
	}}}
}

// arithmeticTruncation subtracts the milliseconds since the cadence boundary of the day.
func arithmeticTruncation(cadence time.Duration) interface{} {
	startOfDay := bson.D{{Key: "$dateTrunc", Value: bson.D{
		{Key: "date", Value: timestampRef},
		{Key: "unit", Value: "day"},
	}}}
	sinceDayStart := bson.D{{Key: "$subtract", Value: bson.A{timestampRef, startOfDay}}}
	return bson.D{{Key: "$subtract", Value: bson.A{
		timestampRef,
		bson.D{{Key: "$mod", Value: bson.A{sinceDayStart, int64(cadence / time.Millisecond)}}},
	}}}
}

// legacyTruncation decomposes the timestamp into the seconds of its day and
// reassembles the bucket from the date string of the day.
func legacyTruncation(cadence time.Duration) interface{} {
	step := int64(cadence / time.Second)
	secondsOfDay := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$multiply", Value: bson.A{bson.D{{Key: "$hour", Value: timestampRef}}, 3600}}},
		bson.D{{Key: "$multiply", Value: bson.A{bson.D{{Key: "$minute", Value: timestampRef}}, 60}}},
		bson.D{{Key: "$second", Value: timestampRef}},
	}}}
	day := bson.D{{Key: "$dateFromString", Value: bson.D{
		{Key: "dateString", Value: bson.D{{Key: "$concat", Value: bson.A{
			bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: timestampRef},
			}}},
			"T00:00:00Z",
		}}}},
	}}}
	floored := bson.D{{Key: "$subtract", Value: bson.A{
		secondsOfDay,
		bson.D{{Key: "$mod", Value: bson.A{secondsOfDay, step}}},
	}}}
	return bson.D{{Key: "$add", Value: bson.A{
		day,
		bson.D{{Key: "$multiply", Value: bson.A{floored, 1000}}},
	}}}
}

func truncation(cadence time.Duration, legacy bool) interface{} {
	switch {
	case legacy:
		return legacyTruncation(cadence)
	case pkgTime.DividesDay(cadence):
		return nativeTruncation(cadence)
	}
	return arithmeticTruncation(cadence)
}

// PipelineParams describes one history aggregation.
type PipelineParams struct {
	AssetID          string
	Ticks            []time.Time
	From             time.Time
	To               time.Time
	Cadence          time.Duration
	Columns          Columns
	Resource         store.Resource
	LegacyTruncation bool
}

// BuildPipeline returns the database aggregation stitching the grid, the
// slices of all sources and the literal columns.
func BuildPipeline(p PipelineParams) mongo.Pipeline {
	stages := mongo.Pipeline{
		{{Key: "$documents", Value: gridDocuments(p.AssetID, p.Ticks)}},
	}
	for _, src := range p.Columns.Sources {
		slice := pipeline.Build(sliceFilter(p.Resource.Schema, src.AssetID, p.From, p.To), nil, pipeline.Group{}, pipeline.Pagination{})
		slice = append(slice, bson.D{{Key: "$project", Value: projection(p.AssetID, src.Channels)}})
		stages = append(stages, unionWith(p.Resource.Collection, slice))
	}
	stages = append(stages,
		bson.D{{Key: "$set", Value: bson.D{
			{Key: rawTimestampKey, Value: timestampRef},
			{Key: store.TimestampKey, Value: truncation(p.Cadence, p.LegacyTruncation)},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: rawTimestampKey, Value: 1}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: store.IDKey, Value: timestampRef},
			{Key: "row", Value: bson.D{{Key: "$mergeObjects", Value: "$$ROOT"}}},
		}}},
		bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$row"}}}},
		bson.D{{Key: "$unset", Value: bson.A{rawTimestampKey}}},
	)
	if len(p.Columns.Literals) > 0 {
		set := bson.D{}
		for _, l := range p.Columns.Literals {
			set = append(set, bson.E{Key: l.Name, Value: bson.D{{Key: "$literal", Value: l.Value}}})
		}
		stages = append(stages, bson.D{{Key: "$set", Value: set}})
	}
	return append(stages, bson.D{{Key: "$sort", Value: bson.D{{Key: store.TimestampKey, Value: -1}}}})
}
