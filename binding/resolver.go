package binding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/pkg/metrics"
	"github.com/plgd-dev/assethub/pkg/opentelemetry"
	"github.com/plgd-dev/assethub/pkg/sync/task/queue"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver walks reference mappings to the terminal binding of an attribute.
type Resolver struct {
	store   store.Reader
	config  Config
	logger  log.Logger
	tracer  trace.Tracer
	queue   *queue.Queue
	metrics *metrics.Metrics
}

func New(r store.Reader, config Config, logger log.Logger, tracerProvider trace.TracerProvider, m *metrics.Metrics) (*Resolver, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	q, err := queue.New(config.TaskQueue)
	if err != nil {
		return nil, fmt.Errorf("cannot create task queue: %w", err)
	}
	return &Resolver{
		store:   r,
		config:  config,
		logger:  logger,
		tracer:  tracerProvider.Tracer(opentelemetry.InstrumentationName, trace.WithInstrumentationVersion(opentelemetry.SemVersion())),
		queue:   q,
		metrics: m,
	}, nil
}

// pick returns the mapping consulted for a hop: reference, then client, then value.
// Server mappings are never consulted.
func pick(mappings []*store.Mapping) *store.Mapping {
	var client, value *store.Mapping
	for _, m := range mappings {
		switch m.Kind {
		case store.ReferenceMapping:
			return m
		case store.ClientMapping:
			if client == nil {
				client = m
			}
		case store.ValueMapping:
			if value == nil {
				value = m
			}
		}
	}
	if client != nil {
		return client
	}
	return value
}

// Resolve returns the terminal binding of the attribute of the asset.
func (r *Resolver) Resolve(ctx context.Context, assetID, attributeID string) (Binding, error) {
	ctx, span := r.tracer.Start(ctx, "binding.Resolve", trace.WithAttributes(
		attribute.String(log.AssetIDKey, assetID),
		attribute.String(log.AttributeIDKey, attributeID),
	))
	defer span.End()
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	b, err := r.walk(ctx, Key{AssetID: assetID, AttributeID: attributeID})
	outcome := Outcome(b, err)
	r.metrics.ObserveResolution(outcome)
	span.SetAttributes(attribute.String("outcome", outcome), attribute.Int("hops", b.Hops))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return b, err
}

func (r *Resolver) walk(ctx context.Context, start Key) (Binding, error) {
	visited := make(map[Key]struct{}, 4)
	cur := start
	for hops := 0; ; hops++ {
		if _, ok := visited[cur]; ok {
			return Binding{Hops: hops}, fmt.Errorf("%w: %v revisited after %v hops starting at %v", ErrCycleDetected, cur, hops, start)
		}
		if hops > r.config.MaxDepth {
			return Binding{Hops: hops}, fmt.Errorf("%w: depth %v exceeds %v starting at %v", ErrCycleDetected, hops, r.config.MaxDepth, start)
		}
		visited[cur] = struct{}{}
		if err := ctx.Err(); err != nil {
			return Binding{Hops: hops}, errTransport(err)
		}
		mappings, err := store.LoadMappings(ctx, r.store, store.MappingQuery{AssetID: cur.AssetID, AttributeID: cur.AttributeID})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Binding{Hops: hops}, errUnresolved(cur)
			}
			return Binding{Hops: hops}, errTransport(err)
		}
		m := pick(mappings)
		if m == nil {
			return Binding{Hops: hops}, errUnresolved(cur)
		}
		switch m.Kind {
		case store.ReferenceMapping:
			cur = Key{AssetID: m.RefAssetID, AttributeID: m.RefAttributeID}
			continue
		case store.ClientMapping:
			source := m.SourceAssetID
			if source == "" {
				source = cur.AssetID
			}
			return Binding{
				Kind:          DeviceChannel,
				SourceAssetID: source,
				Channel:       m.Channel,
				AssetID:       cur.AssetID,
				AttributeID:   cur.AttributeID,
				Hops:          hops,
			}, nil
		default:
			return Binding{
				Kind:        Literal,
				Value:       m.Value,
				AssetID:     cur.AssetID,
				AttributeID: cur.AttributeID,
				Hops:        hops,
			}, nil
		}
	}
}

// Result is the resolution of one attribute of ResolveAll.
type Result struct {
	AttributeID string
	Binding     Binding
	Err         error
}

// ResolveAll resolves the attributes of the asset concurrently. A failed
// attribute is reported in its Result and does not abort the others. Results
// keep the order of attributeIDs.
func (r *Resolver) ResolveAll(ctx context.Context, assetID string, attributeIDs []string) ([]Result, error) {
	results := make([]Result, len(attributeIDs))
	var mutex sync.Mutex
	tasks := make([]func(), 0, len(attributeIDs))
	for i, id := range attributeIDs {
		i, id := i, id
		tasks = append(tasks, func() {
			start := time.Now()
			b, err := r.Resolve(ctx, assetID, id)
			mutex.Lock()
			defer mutex.Unlock()
			results[i] = Result{AttributeID: id, Binding: b, Err: err}
			if r.logger.Check(log.DebugLevel) {
				r.logger.With(log.AssetIDKey, assetID, log.AttributeIDKey, id, log.DurationMSKey, log.DurationToMilliseconds(time.Since(start))).
					Debugf("resolved binding: %v", Outcome(b, err))
			}
		})
	}
	if err := r.queue.SubmitWait(ctx, tasks...); err != nil {
		return nil, errTransport(err)
	}
	mutex.Lock()
	defer mutex.Unlock()
	out := make([]Result, len(results))
	copy(out, results)
	return out, nil
}

// Close releases the worker pool.
func (r *Resolver) Close() {
	r.queue.Release()
}
