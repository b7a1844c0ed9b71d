package lifecycle

import (
	"fmt"
	"sort"
	"time"

	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/pkg/metrics"
	"github.com/plgd-dev/assethub/telemetry/store"
)

const (
	WindowActive   = "active"
	WindowClosed   = "closed"
	WindowDegraded = "degraded"
	WindowDropped  = "dropped"
)

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("start('%v') is after end('%v')", p.Start, p.End)
	}
	return nil
}

// Window is the usage of a resource within a period.
type Window struct {
	ResourceID   string    `json:"resourceId"`
	ResourceType string    `json:"resourceType"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	// Active is set when the window runs until the end of the period.
	Active bool `json:"active"`
	// Degraded is set when the events of the resource were not a create/destroy pair.
	Degraded bool `json:"degraded"`
	// Setting effective at Start.
	Setting *Setting `json:"setting,omitempty"`
	Events  int      `json:"events"`
}

func (w Window) State() string {
	switch {
	case w.Degraded:
		return WindowDegraded
	case w.Active:
		return WindowActive
	}
	return WindowClosed
}

// Reconciler pairs lifecycle events into usage windows.
type Reconciler struct {
	settings *SettingsIndex
	logger   log.Logger
	metrics  *metrics.Metrics
}

func NewReconciler(settings *SettingsIndex, logger log.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{settings: settings, logger: logger, metrics: m}
}

func sortEvents(events []store.LifecycleEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

func (r *Reconciler) window(resourceID string, events []store.LifecycleEvent, period Period) Window {
	sortEvents(events)
	w := Window{
		ResourceID:   resourceID,
		ResourceType: events[0].ResourceType,
		Events:       len(events),
	}
	switch len(events) {
	case 1:
		w.Start, w.End, w.Active = events[0].Timestamp, period.End, true
	case 2:
		w.Start, w.End = events[0].Timestamp, events[1].Timestamp
	default:
		start := events[0]
		for _, ev := range events {
			if ev.Phase == store.PhaseCreate {
				start = ev
				break
			}
		}
		r.logger.With(log.ResourceIDKey, resourceID).
			Warnf("integrity warning: %v lifecycle events, using window from %v %v event", len(events), start.Timestamp, start.Phase)
		w.Start, w.End, w.Active, w.Degraded = start.Timestamp, period.End, true, true
	}
	return w
}

func clip(w Window, period Period) (Window, bool) {
	if w.End.Before(period.Start) || w.Start.After(period.End) {
		return w, false
	}
	if w.Start.Before(period.Start) {
		w.Start = period.Start
	}
	if w.End.After(period.End) {
		w.End = period.End
	}
	return w, true
}

// Reconcile groups the events by resource id into windows clipped to the
// period. Windows entirely outside the period are dropped.
func (r *Reconciler) Reconcile(events []store.LifecycleEvent, period Period) map[string]Window {
	byResource := make(map[string][]store.LifecycleEvent)
	for _, ev := range events {
		if ev.ResourceID == "" {
			r.logger.Warnf("skipping lifecycle event without resource id at %v", ev.Timestamp)
			continue
		}
		byResource[ev.ResourceID] = append(byResource[ev.ResourceID], ev)
	}
	windows := make(map[string]Window, len(byResource))
	for resourceID, evs := range byResource {
		w, ok := clip(r.window(resourceID, evs, period), period)
		if !ok {
			r.metrics.ObserveWindow(WindowDropped)
			continue
		}
		if s, ok := r.settings.At(w.Start); ok {
			w.Setting = &s
		}
		r.metrics.ObserveWindow(w.State())
		windows[resourceID] = w
	}
	return windows
}

// SortedWindows returns the windows ordered by resource id.
func SortedWindows(windows map[string]Window) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ResourceID < out[j].ResourceID
	})
	return out
}
