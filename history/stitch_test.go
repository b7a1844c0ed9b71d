package history_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/history"
	pkgTime "github.com/plgd-dev/assethub/pkg/time"
	"github.com/plgd-dev/assethub/telemetry/store"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestStitchGrid(t *testing.T) {
	ticks := pkgTime.Ticks(t0, t0.Add(10*time.Second), 5*time.Second)
	rows := history.Stitch("site-1", ticks, 5*time.Second, nil, nil)
	require.Equal(t, []history.Row{
		{"timestamp": t0.Add(10 * time.Second), "assetId": "site-1"},
		{"timestamp": t0.Add(5 * time.Second), "assetId": "site-1"},
		{"timestamp": t0, "assetId": "site-1"},
	}, rows)
}

func TestStitchMerge(t *testing.T) {
	ticks := pkgTime.Ticks(t0, t0.Add(10*time.Second), 5*time.Second)
	samples := []history.Sample{
		{Timestamp: t0.Add(7 * time.Second), Values: map[string]interface{}{"power": 2.0}},
		{Timestamp: t0.Add(6 * time.Second), Values: map[string]interface{}{"power": 1.0, "voltage": 230.0}},
		{Timestamp: t0.Add(1500 * time.Millisecond), Values: map[string]interface{}{"voltage": 229.0}},
	}
	rows := history.Stitch("site-1", ticks, 5*time.Second, samples, []history.Literal{{Name: "capacity", Value: 250.0}})
	require.Equal(t, []history.Row{
		{"timestamp": t0.Add(10 * time.Second), "assetId": "site-1", "capacity": 250.0},
		{"timestamp": t0.Add(5 * time.Second), "assetId": "site-1", "capacity": 250.0, "power": 2.0, "voltage": 230.0},
		{"timestamp": t0, "assetId": "site-1", "capacity": 250.0, "voltage": 229.0},
	}, rows)
}

func TestStitchDuplicateSampleIdempotent(t *testing.T) {
	ticks := pkgTime.Ticks(t0, t0.Add(10*time.Second), 5*time.Second)
	sample := history.Sample{Timestamp: t0.Add(6 * time.Second), Values: map[string]interface{}{"power": 1.0}}
	once := history.Stitch("site-1", ticks, 5*time.Second, []history.Sample{sample}, nil)
	twice := history.Stitch("site-1", ticks, 5*time.Second, []history.Sample{sample, sample}, nil)
	require.Equal(t, once, twice)
}

func TestStitchCadenceNotDividingDay(t *testing.T) {
	// 7s buckets restart at midnight
	midnight := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	samples := []history.Sample{
		{Timestamp: midnight.Add(-time.Second), Values: map[string]interface{}{"power": 1.0}},
		{Timestamp: midnight.Add(8 * time.Second), Values: map[string]interface{}{"power": 2.0}},
	}
	rows := history.Stitch("site-1", nil, 7*time.Second, samples, nil)
	require.Len(t, rows, 2)
	require.Equal(t, midnight.Add(7*time.Second), rows[0].Timestamp())
	// 86399s of the previous day floors to 86394s
	require.Equal(t, midnight.Add(-6*time.Second), rows[1].Timestamp())
}

func TestSamplesFromDocuments(t *testing.T) {
	docs := []store.Document{
		{"timestamp": t0, "ac": map[string]interface{}{"p": 1.5}, "v": 230.0},
		{"timestamp": t0.Add(time.Second), "other": 1},
		{"v": 231.0},
	}
	samples := history.SamplesFromDocuments(docs, []history.Channel{
		{Name: "power", Path: "ac.p"},
		{Name: "voltage", Path: "v"},
	})
	require.Equal(t, []history.Sample{
		{Timestamp: t0, Values: map[string]interface{}{"power": 1.5, "voltage": 230.0}},
	}, samples)
}
