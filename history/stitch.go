package history

import (
	"sort"
	"time"

	pkgTime "github.com/plgd-dev/assethub/pkg/time"
	"github.com/plgd-dev/assethub/telemetry/store"
)

// Sample is a raw document projected to columns.
type Sample struct {
	Timestamp time.Time
	Values    map[string]interface{}
}

// SamplesFromDocuments projects the channels of the source documents to samples.
// Documents without a timestamp or any of the channels are skipped.
func SamplesFromDocuments(docs []store.Document, channels []Channel) []Sample {
	samples := make([]Sample, 0, len(docs))
	for _, d := range docs {
		ts, ok := d.Timestamp()
		if !ok {
			continue
		}
		values := make(map[string]interface{}, len(channels))
		for _, ch := range channels {
			if v, ok := d.Get(ch.Path); ok {
				values[ch.Name] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		samples = append(samples, Sample{Timestamp: ts, Values: values})
	}
	return samples
}

// Stitch merges the samples into the time grid of the asset. Every tick and
// sample is bucketed to the cadence floor of its UTC day; within a bucket the
// sample with the later raw timestamp wins per column. Literals are set on
// every row. Rows are sorted by timestamp descending.
func Stitch(assetID string, ticks []time.Time, cadence time.Duration, samples []Sample, literals []Literal) []Row {
	buckets := make(map[int64]Row, len(ticks))
	bucket := func(t time.Time) Row {
		b := pkgTime.FloorToCadence(t, cadence)
		row, ok := buckets[b.UnixNano()]
		if !ok {
			row = Row{store.TimestampKey: b, store.AssetIDKey: assetID}
			buckets[b.UnixNano()] = row
		}
		return row
	}
	for _, t := range ticks {
		bucket(t)
	}
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	for _, s := range sorted {
		row := bucket(s.Timestamp)
		for k, v := range s.Values {
			row[k] = v
		}
	}
	rows := make([]Row, 0, len(buckets))
	for _, row := range buckets {
		for _, l := range literals {
			row[l.Name] = l.Value
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp().After(rows[j].Timestamp())
	})
	return rows
}
