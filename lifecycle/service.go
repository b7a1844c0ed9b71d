package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/pkg/metrics"
	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
	"github.com/plgd-dev/assethub/telemetry/store"
)

var ErrInvalidPeriod = errors.New("invalid period")

// ReconcileService loads lifecycle events from the document store and
// reconciles them per resource type.
type ReconcileService struct {
	store    store.DocumentStore
	resource store.Resource
	settings map[string]*SettingsIndex
	logger   log.Logger
	metrics  *metrics.Metrics
}

func NewReconcileService(s store.DocumentStore, config Config, logger log.Logger, m *metrics.Metrics) (*ReconcileService, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	resource, _ := store.LookupResource(store.LifecycleResource)
	return &ReconcileService{
		store:    s,
		resource: resource,
		settings: config.indexes(),
		logger:   logger,
		metrics:  m,
	}, nil
}

// Reconciler returns the reconciler using the settings of the resource type.
func (s *ReconcileService) Reconciler(resourceType string) *Reconciler {
	return NewReconciler(s.settings[resourceType], s.logger.With("resourceType", resourceType), s.metrics)
}

// Windows returns the usage windows of the resources of the type within the
// period, ordered by resource id.
func (s *ReconcileService) Windows(ctx context.Context, resourceType string, period Period) ([]Window, error) {
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}
	predicates := filter.Compile(s.resource.Schema, filter.Kwargs{
		{Key: store.ResourceTypeField.Name, Value: resourceType},
		{Key: store.TimestampField.Name + "__lte", Value: period.End},
	}, filter.WithLogger(s.logger))
	docs, err := s.store.Find(ctx, s.resource.Collection, predicates, store.FindOptions{
		Sort: []pipeline.SortField{{Field: store.TimestampField}},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot load lifecycle events of %v: %w", resourceType, err)
	}
	events := make([]store.LifecycleEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, store.LifecycleEventFromDocument(d))
	}
	return SortedWindows(s.Reconciler(resourceType).Reconcile(events, period)), nil
}
