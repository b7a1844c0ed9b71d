package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/pkg/metrics"
	"github.com/plgd-dev/assethub/pkg/opentelemetry"
	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/telemetry/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnknownResourceType = errors.New("unknown resource type")

// Service runs declarative queries against the resources of a document store.
type Service struct {
	store     store.DocumentStore
	resources map[string]store.Resource
	logger    log.Logger
	tracer    trace.Tracer
	metrics   *metrics.Metrics
}

// New creates the service for the resources. The built-in resources are used when none is given.
func New(s store.DocumentStore, logger log.Logger, tracerProvider trace.TracerProvider, m *metrics.Metrics, resources ...store.Resource) *Service {
	if len(resources) == 0 {
		for _, name := range store.ResourceNames() {
			r, _ := store.LookupResource(name)
			resources = append(resources, r)
		}
	}
	byName := make(map[string]store.Resource, len(resources))
	for _, r := range resources {
		byName[r.Name] = r
	}
	return &Service{
		store:     s,
		resources: byName,
		logger:    logger,
		tracer:    tracerProvider.Tracer(opentelemetry.InstrumentationName, trace.WithInstrumentationVersion(opentelemetry.SemVersion())),
		metrics:   m,
	}
}

func (s *Service) Resource(resourceType string) (store.Resource, error) {
	r, ok := s.resources[resourceType]
	if !ok {
		return store.Resource{}, fmt.Errorf("%w: '%v'", ErrUnknownResourceType, resourceType)
	}
	return r, nil
}

// Query compiles the kwargs against the schema of the resource type and runs
// the resulting pipeline.
func (s *Service) Query(ctx context.Context, resourceType string, kwargs filter.Kwargs) (docs []store.Document, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "query.Query", trace.WithAttributes(attribute.String("resourceType", resourceType)))
	defer func() {
		s.metrics.ObserveQuery(resourceType, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	r, err := s.Resource(resourceType)
	if err != nil {
		return nil, err
	}
	spec, err := ParseRequest(r.Schema, kwargs, s.logger)
	if err != nil {
		return nil, err
	}
	p := spec.Build()
	docs, err = s.store.Aggregate(ctx, r.Collection, p)
	if err != nil {
		return nil, fmt.Errorf("cannot query %v: %w", resourceType, err)
	}
	if s.logger.Check(log.DebugLevel) {
		s.logger.With(log.DurationMSKey, log.DurationToMilliseconds(time.Since(start))).
			Debugf("query %v: %v stages, %v documents", resourceType, len(p), len(docs))
	}
	return docs, nil
}

// Insert normalizes and appends the documents to the collection of the resource type.
func (s *Service) Insert(ctx context.Context, resourceType string, docs []store.Document) (int, error) {
	r, err := s.Resource(resourceType)
	if err != nil {
		return 0, err
	}
	normalized := make([]store.Document, 0, len(docs))
	for i, d := range docs {
		n, err := store.NormalizeDocument(r, d)
		if err != nil {
			return 0, fmt.Errorf("document[%v]: %w", i, err)
		}
		normalized = append(normalized, n)
	}
	if err := s.store.Insert(ctx, r.Collection, normalized); err != nil {
		return 0, fmt.Errorf("cannot insert %v: %w", resourceType, err)
	}
	return len(normalized), nil
}
