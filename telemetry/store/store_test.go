package store_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/telemetry/store"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDocument(t *testing.T) {
	telemetry, ok := store.LookupResource(store.TelemetryResource)
	require.True(t, ok)
	lifecycle, ok := store.LookupResource(store.LifecycleResource)
	require.True(t, ok)

	tests := []struct {
		name     string
		resource store.Resource
		doc      store.Document
		wantTS   time.Time
		wantErr  bool
	}{
		{
			name:     "string timestamp",
			resource: telemetry,
			doc:      store.Document{"assetId": "inv-1", "timestamp": "2024-05-01T12:00:00+02:00", "power": 3.2},
			wantTS:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "time timestamp",
			resource: telemetry,
			doc:      store.Document{"assetId": "inv-1", "timestamp": time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
			wantTS:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{name: "missing timestamp", resource: telemetry, doc: store.Document{"assetId": "inv-1"}, wantErr: true},
		{name: "invalid timestamp", resource: telemetry, doc: store.Document{"assetId": "inv-1", "timestamp": "noon"}, wantErr: true},
		{name: "missing asset", resource: telemetry, doc: store.Document{"timestamp": "2024-05-01T12:00:00Z"}, wantErr: true},
		{
			name:     "lifecycle",
			resource: lifecycle,
			doc:      store.Document{"resourceId": "vm-1", "resourceType": "vm", "phase": "create", "timestamp": "2024-05-01T12:00:00Z"},
			wantTS:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "lifecycle invalid phase",
			resource: lifecycle,
			doc:      store.Document{"resourceId": "vm-1", "resourceType": "vm", "phase": "pause", "timestamp": "2024-05-01T12:00:00Z"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.NormalizeDocument(tt.resource, tt.doc)
			if tt.wantErr {
				require.ErrorIs(t, err, store.ErrInvalidDocument)
				return
			}
			require.NoError(t, err)
			ts, ok := got.Timestamp()
			require.True(t, ok)
			require.True(t, tt.wantTS.Equal(ts))
			require.Equal(t, time.UTC, ts.Location())
		})
	}
}

func TestLifecycleEventFromDocument(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := store.LifecycleEventFromDocument(store.Document{
		"resourceId":   "vm-1",
		"resourceType": "vm",
		"phase":        "destroy",
		"timestamp":    ts,
		"payload":      map[string]interface{}{"flavor": "small"},
	})
	require.Equal(t, store.LifecycleEvent{
		ResourceID:   "vm-1",
		ResourceType: "vm",
		Phase:        store.PhaseDestroy,
		Timestamp:    ts,
		Payload:      map[string]interface{}{"flavor": "small"},
	}, ev)
}

func TestResources(t *testing.T) {
	require.Equal(t, []string{store.LifecycleResource, store.TelemetryResource}, store.ResourceNames())
	_, ok := store.LookupResource("invoices")
	require.False(t, ok)

	r, _ := store.LookupResource(store.TelemetryResource)
	_, ok = r.Schema.Field("power")
	require.False(t, ok)
	extended := r.WithFields(filter.Field{Name: "power", Type: filter.Number})
	_, ok = extended.Schema.Field("power")
	require.True(t, ok)
	_, ok = r.Schema.Field("power")
	require.False(t, ok)
}

func TestDocumentGet(t *testing.T) {
	doc := store.Document{
		"assetId": "inv-1",
		"ac":      map[string]interface{}{"phase": map[string]interface{}{"l1": 230.1}},
	}
	v, ok := doc.Get("ac.phase.l1")
	require.True(t, ok)
	require.Equal(t, 230.1, v)
	v, ok = doc.Get("assetId")
	require.True(t, ok)
	require.Equal(t, "inv-1", v)
	_, ok = doc.Get("ac.phase.l2")
	require.False(t, ok)
	_, ok = doc.Get("assetId.x")
	require.False(t, ok)
}
