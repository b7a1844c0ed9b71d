package service

import (
	"context"
	"fmt"

	"github.com/plgd-dev/assethub/binding"
	"github.com/plgd-dev/assethub/history"
	"github.com/plgd-dev/assethub/lifecycle"
	storeConfig "github.com/plgd-dev/assethub/mapping/store/config"
	"github.com/plgd-dev/assethub/pkg/fn"
	"github.com/plgd-dev/assethub/pkg/log"
	"github.com/plgd-dev/assethub/pkg/metrics"
	pkgHttp "github.com/plgd-dev/assethub/pkg/net/http"
	otelClient "github.com/plgd-dev/assethub/pkg/opentelemetry/collector/client"
	"github.com/plgd-dev/assethub/pkg/service"
	"github.com/plgd-dev/assethub/query"
	"github.com/plgd-dev/assethub/query/filter"
	telemetryStore "github.com/plgd-dev/assethub/telemetry/store"
	documentsMongo "github.com/plgd-dev/assethub/telemetry/store/mongodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "asset-gateway"

// resources returns the queryable resources, telemetry extended by the configured fields.
func resources(config DocumentsConfig) (telemetry, lifecycleEvents telemetryStore.Resource, err error) {
	telemetry, _ = telemetryStore.LookupResource(telemetryStore.TelemetryResource)
	lifecycleEvents, _ = telemetryStore.LookupResource(telemetryStore.LifecycleResource)
	fields := make([]filter.Field, 0, len(config.TelemetryFields))
	for i, f := range config.TelemetryFields {
		field, err := f.ToField()
		if err != nil {
			return telemetry, lifecycleEvents, fmt.Errorf("telemetryFields[%v].%w", i, err)
		}
		fields = append(fields, field)
	}
	return telemetry.WithFields(fields...), lifecycleEvents, nil
}

// New creates the asset gateway: stores, resolver, query, history and lifecycle
// services served over HTTP.
func New(ctx context.Context, config Config, logger log.Logger) (*service.Service, error) {
	var closerFn fn.FuncList
	otelClient, err := otelClient.New(ctx, config.Clients.OpenTelemetryCollector.Config, serviceName, logger)
	if err != nil {
		return nil, fmt.Errorf("cannot create open telemetry collector client: %w", err)
	}
	closerFn.AddFunc(otelClient.Close)
	tracerProvider := otelClient.GetTracerProvider()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create metrics: %w", err)
	}

	mappings, err := storeConfig.Open(ctx, config.Clients.Storage, logger, tracerProvider)
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create mapping store: %w", err)
	}
	closerFn.AddFunc(func() {
		if errC := mappings.Close(context.Background()); errC != nil {
			logger.Errorf("failed to close mapping store: %v", errC)
		}
	})

	documents, err := documentsMongo.New(ctx, &config.Clients.Documents.MongoDB, tracerProvider)
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create document store: %w", err)
	}
	closerFn.AddFunc(func() {
		if errC := documents.Close(context.Background()); errC != nil {
			logger.Errorf("failed to close document store: %v", errC)
		}
	})

	resolver, err := binding.New(mappings, config.Binding, logger, tracerProvider, m)
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create binding resolver: %w", err)
	}
	closerFn.AddFunc(resolver.Close)

	telemetry, lifecycleEvents, err := resources(config.Clients.Documents)
	if err != nil {
		closerFn.Execute()
		return nil, err
	}
	querySvc := query.New(documents, logger, tracerProvider, m, telemetry, lifecycleEvents)
	historySvc, err := history.New(resolver, mappings, documents, telemetry, config.History, logger, tracerProvider, m)
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create history service: %w", err)
	}
	lifecycleSvc, err := lifecycle.NewReconcileService(documents, config.Lifecycle, logger, m)
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create lifecycle service: %w", err)
	}

	handler := NewHTTP(NewRequestHandler(resolver, mappings, querySvc, historySvc, lifecycleSvc, reg, logger), logger)
	httpServer, err := pkgHttp.NewServer(config.APIs.HTTP, pkgHttp.OpenTelemetryNewHandler(handler, serviceName, tracerProvider, config.Clients.OpenTelemetryCollector.PublicEndpoint))
	if err != nil {
		closerFn.Execute()
		return nil, fmt.Errorf("cannot create http server: %w", err)
	}
	logger.Infof("%v listens on %v", serviceName, httpServer.Addr())

	s := service.New(httpServer)
	s.AddCloseFunc(closerFn.Execute)
	return s, nil
}
