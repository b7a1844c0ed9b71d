package client

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/plgd-dev/assethub/pkg/fn"
	"github.com/plgd-dev/assethub/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Client struct {
	ctx            context.Context
	logger         log.Logger
	tracerProvider *sdktrace.TracerProvider
	closeFunc      fn.FuncList
}

// AddCloseFunc adds a function to be called by the Close method.
// This eliminates the need for wrapping the Client.
func (c *Client) AddCloseFunc(f func()) {
	c.closeFunc.AddFunc(f)
}

func (c *Client) GetTracerProvider() trace.TracerProvider {
	if c.tracerProvider == nil {
		return noop.NewTracerProvider()
	}
	return c.tracerProvider
}

func (c *Client) close(ctx context.Context) error {
	var errors *multierror.Error
	if c.tracerProvider != nil {
		if err := c.tracerProvider.Shutdown(ctx); err != nil {
			errors = multierror.Append(errors, err)
		}
	}
	c.closeFunc.Execute()
	return errors.ErrorOrNil()
}

func (c *Client) Close() {
	if err := c.close(c.ctx); err != nil {
		c.logger.Errorf("cannot close open telemetry collector client: %v", err)
	}
}

// New creates a new tracer provider with grpc exporter when it is enabled.
func New(ctx context.Context, cfg Config, serviceName string, logger log.Logger) (*Client, error) {
	if !cfg.GRPC.Enabled {
		return &Client{
			ctx:    ctx,
			logger: logger,
		}, nil
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			// the service name used to display traces in backends
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.GRPC.Address)}
	if cfg.GRPC.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if cfg.GRPC.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.GRPC.Timeout))
	}
	traceExporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Register the trace exporter with a TracerProvider, using a batch
	// span processor to aggregate spans before export.
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Client{
		ctx:            ctx,
		logger:         logger,
		tracerProvider: tracerProvider,
	}, nil
}
