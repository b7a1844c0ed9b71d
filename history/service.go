package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plgd-dev/assethub/binding"
	mappingStore "github.com/plgd-dev/assethub/mapping/store"
	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/pkg/metrics"
	"github.com/plgd-dev/assethub/pkg/opentelemetry"
	pkgTime "github.com/plgd-dev/assethub/pkg/time"
	"github.com/plgd-dev/assethub/query/pipeline"
	"github.com/plgd-dev/assethub/telemetry/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type Resolver interface {
	ResolveAll(ctx context.Context, assetID string, attributeIDs []string) ([]binding.Result, error)
}

type AttributeReader interface {
	GetAttribute(ctx context.Context, id string) (*mappingStore.Attribute, error)
}

// Service builds fixed cadence histories of asset attributes.
type Service struct {
	resolver   Resolver
	attributes AttributeReader
	documents  store.DocumentStore
	resource   store.Resource
	config     Config
	logger     log.Logger
	tracer     trace.Tracer
	metrics    *metrics.Metrics
}

func New(resolver Resolver, attributes AttributeReader, documents store.DocumentStore, resource store.Resource, config Config, logger log.Logger, tracerProvider trace.TracerProvider, m *metrics.Metrics) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{
		resolver:   resolver,
		attributes: attributes,
		documents:  documents,
		resource:   resource,
		config:     config,
		logger:     logger,
		tracer:     tracerProvider.Tracer(opentelemetry.InstrumentationName, trace.WithInstrumentationVersion(opentelemetry.SemVersion())),
		metrics:    m,
	}, nil
}

// columns resolves the attributes. Attributes which do not resolve, whose
// record is missing, or whose name or channel cannot form a column are logged
// and skipped; store failures abort. A repeated name keeps the first attribute.
func (s *Service) columns(ctx context.Context, assetID string, attributeIDs []string) (Columns, error) {
	var cols Columns
	results, err := s.resolver.ResolveAll(ctx, assetID, attributeIDs)
	if err != nil {
		return cols, err
	}
	names := make(map[string]string, len(results))
	for _, r := range results {
		logger := s.logger.With(log.AssetIDKey, assetID, log.AttributeIDKey, r.AttributeID)
		if r.Err != nil {
			if errors.Is(r.Err, binding.ErrTransport) {
				return cols, r.Err
			}
			logger.Warnf("skipping attribute: %v", r.Err)
			continue
		}
		attr, err := s.attributes.GetAttribute(ctx, r.AttributeID)
		if err != nil {
			if errors.Is(err, mappingStore.ErrNotFound) {
				logger.Warnf("skipping attribute: %v", err)
				continue
			}
			return cols, fmt.Errorf("%w: %w", binding.ErrTransport, err)
		}
		if err := validColumnName(attr.Name); err != nil {
			logger.Warnf("skipping attribute: %v", err)
			continue
		}
		if other, ok := names[attr.Name]; ok {
			logger.Warnf("skipping attribute: column name '%v' is already used by attribute '%v'", attr.Name, other)
			continue
		}
		if r.Binding.Kind == binding.DeviceChannel {
			if err := mappingStore.ValidateChannel(r.Binding.Channel); err != nil {
				logger.Warnf("skipping attribute: %v", err)
				continue
			}
		}
		names[attr.Name] = r.AttributeID
		switch r.Binding.Kind {
		case binding.Literal:
			cols.Literals = append(cols.Literals, Literal{Name: attr.Name, Value: r.Binding.Value})
		case binding.DeviceChannel:
			cols.addChannel(r.Binding.SourceAssetID, Channel{Name: attr.Name, Path: r.Binding.Channel})
		}
	}
	cols.sort()
	return cols, nil
}

// History returns one row per cadence tick in [From, To] sorted by timestamp
// descending, with a column per resolved attribute named by the attribute.
func (s *Service) History(ctx context.Context, req Request) (rows []Row, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "history.History", trace.WithAttributes(
		attribute.String(log.AssetIDKey, req.AssetID),
		attribute.String("mode", string(s.config.Mode)),
	))
	defer func() {
		s.metrics.ObserveHistory(string(s.config.Mode), err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	if err = req.Validate(s.config.MaxTicks); err != nil {
		return nil, err
	}
	req.From, req.To = req.From.UTC(), req.To.UTC()
	cols, err := s.columns(ctx, req.AssetID, req.AttributeIDs)
	if err != nil {
		return nil, err
	}
	ticks := pkgTime.Ticks(req.From, req.To, req.Cadence)
	if s.config.Mode == ModeClient {
		rows, err = s.stitchInProcess(ctx, req, ticks, cols)
	} else {
		rows, err = s.stitchInDatabase(ctx, req, ticks, cols)
	}
	if err != nil {
		return nil, err
	}
	if s.logger.Check(log.DebugLevel) {
		s.logger.With(log.AssetIDKey, req.AssetID, log.DurationMSKey, log.DurationToMilliseconds(time.Since(start))).
			Debugf("history: %v sources, %v literals, %v rows", len(cols.Sources), len(cols.Literals), len(rows))
	}
	return rows, nil
}

func (s *Service) stitchInDatabase(ctx context.Context, req Request, ticks []time.Time, cols Columns) ([]Row, error) {
	p := BuildPipeline(PipelineParams{
		AssetID:          req.AssetID,
		Ticks:            ticks,
		From:             req.From,
		To:               req.To,
		Cadence:          req.Cadence,
		Columns:          cols,
		Resource:         s.resource,
		LegacyTruncation: s.config.LegacyTruncation,
	})
	docs, err := s.documents.AggregateDatabase(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("cannot aggregate history: %w", err)
	}
	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, Row(d))
	}
	return rows, nil
}

func (s *Service) stitchInProcess(ctx context.Context, req Request, ticks []time.Time, cols Columns) ([]Row, error) {
	slices := make([][]Sample, len(cols.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrentSources)
	for i, src := range cols.Sources {
		i, src := i, src
		g.Go(func() error {
			docs, err := s.documents.Find(gctx, s.resource.Collection, sliceFilter(s.resource.Schema, src.AssetID, req.From, req.To), store.FindOptions{
				Sort: []pipeline.SortField{{Field: store.TimestampField}},
			})
			if err != nil {
				return fmt.Errorf("cannot load slice of source %v: %w", src.AssetID, err)
			}
			slices[i] = SamplesFromDocuments(docs, src.Channels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var samples []Sample
	for _, slice := range slices {
		samples = append(samples, slice...)
	}
	return Stitch(req.AssetID, ticks, req.Cadence, samples, cols.Literals), nil
}
