package lifecycle_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/lifecycle"
	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/telemetry/store"
	"github.com/stretchr/testify/require"
)

var (
	day    = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	period = lifecycle.Period{Start: day, End: day.Add(24 * time.Hour)}
)

func event(id string, phase store.Phase, ts time.Time) store.LifecycleEvent {
	return store.LifecycleEvent{ResourceID: id, ResourceType: "vm", Phase: phase, Timestamp: ts}
}

func TestReconcile(t *testing.T) {
	t0 := day.Add(2 * time.Hour)
	t1 := day.Add(5 * time.Hour)
	tests := []struct {
		name   string
		events []store.LifecycleEvent
		want   map[string]lifecycle.Window
	}{
		{
			name:   "single create is active until period end",
			events: []store.LifecycleEvent{event("a", store.PhaseCreate, t0)},
			want: map[string]lifecycle.Window{
				"a": {ResourceID: "a", ResourceType: "vm", Start: t0, End: period.End, Active: true, Events: 1},
			},
		},
		{
			name: "pair is normalized by timestamp",
			events: []store.LifecycleEvent{
				event("a", store.PhaseCreate, t1),
				event("a", store.PhaseDestroy, t0),
			},
			want: map[string]lifecycle.Window{
				"a": {ResourceID: "a", ResourceType: "vm", Start: t0, End: t1, Events: 2},
			},
		},
		{
			name: "three events degrade from earliest create",
			events: []store.LifecycleEvent{
				event("a", store.PhaseDestroy, t0),
				event("a", store.PhaseCreate, t1),
				event("a", store.PhaseDestroy, t1.Add(time.Hour)),
			},
			want: map[string]lifecycle.Window{
				"a": {ResourceID: "a", ResourceType: "vm", Start: t1, End: period.End, Active: true, Degraded: true, Events: 3},
			},
		},
		{
			name: "degraded without create starts at earliest event",
			events: []store.LifecycleEvent{
				event("a", store.PhaseDestroy, t1),
				event("a", store.PhaseDestroy, t0),
				event("a", store.PhaseDestroy, t1.Add(time.Hour)),
			},
			want: map[string]lifecycle.Window{
				"a": {ResourceID: "a", ResourceType: "vm", Start: t0, End: period.End, Active: true, Degraded: true, Events: 3},
			},
		},
		{
			name: "clipped to period",
			events: []store.LifecycleEvent{
				event("a", store.PhaseCreate, day.Add(-time.Hour)),
				event("a", store.PhaseDestroy, t0),
			},
			want: map[string]lifecycle.Window{
				"a": {ResourceID: "a", ResourceType: "vm", Start: period.Start, End: t0, Events: 2},
			},
		},
		{
			name: "outside period is dropped",
			events: []store.LifecycleEvent{
				event("a", store.PhaseCreate, day.Add(-3*time.Hour)),
				event("a", store.PhaseDestroy, day.Add(-time.Hour)),
				event("b", store.PhaseCreate, period.End.Add(time.Hour)),
			},
			want: map[string]lifecycle.Window{},
		},
		{
			name: "missing resource id is skipped",
			events: []store.LifecycleEvent{
				event("", store.PhaseCreate, t0),
				event("b", store.PhaseCreate, t1),
			},
			want: map[string]lifecycle.Window{
				"b": {ResourceID: "b", ResourceType: "vm", Start: t1, End: period.End, Active: true, Events: 1},
			},
		},
	}
	r := lifecycle.NewReconciler(nil, log.NewNopLogger(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, r.Reconcile(tt.events, period))
		})
	}
}

func TestReconcileAttachesSetting(t *testing.T) {
	settings := lifecycle.NewSettingsIndex([]lifecycle.Setting{
		{EffectiveFrom: day.Add(-24 * time.Hour), Values: map[string]interface{}{"rate": 1.0}},
		{EffectiveFrom: day.Add(4 * time.Hour), Values: map[string]interface{}{"rate": 2.0}},
	})
	r := lifecycle.NewReconciler(settings, log.NewNopLogger(), nil)
	windows := r.Reconcile([]store.LifecycleEvent{
		event("a", store.PhaseCreate, day.Add(time.Hour)),
		event("b", store.PhaseCreate, day.Add(5*time.Hour)),
	}, period)
	require.Equal(t, 1.0, windows["a"].Setting.Values["rate"])
	require.Equal(t, 2.0, windows["b"].Setting.Values["rate"])
}

func TestWindowState(t *testing.T) {
	require.Equal(t, lifecycle.WindowClosed, lifecycle.Window{}.State())
	require.Equal(t, lifecycle.WindowActive, lifecycle.Window{Active: true}.State())
	require.Equal(t, lifecycle.WindowDegraded, lifecycle.Window{Active: true, Degraded: true}.State())
}

func TestSortedWindows(t *testing.T) {
	got := lifecycle.SortedWindows(map[string]lifecycle.Window{
		"b": {ResourceID: "b"},
		"a": {ResourceID: "a"},
	})
	require.Equal(t, []lifecycle.Window{{ResourceID: "a"}, {ResourceID: "b"}}, got)
}
