package http

import (
	"net/http"

	otelClient "github.com/plgd-dev/assethub/pkg/opentelemetry/collector/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

type OpenTelemetryCollectorConfig struct {
	otelClient.Config `yaml:",inline"`
	PublicEndpoint    bool `yaml:"publicEndpoint" json:"publicEndpoint"`
}

func (c *OpenTelemetryCollectorConfig) Validate() error {
	return c.Config.Validate()
}

// OpenTelemetryNewHandler starts a server span for every request of the handler.
func OpenTelemetryNewHandler(handler http.Handler, serviceName string, tracerProvider trace.TracerProvider, publicEndpoint bool) http.Handler {
	opts := []otelhttp.Option{
		otelhttp.WithTracerProvider(tracerProvider),
	}
	if publicEndpoint {
		opts = append(opts, otelhttp.WithPublicEndpoint())
	}
	return otelhttp.NewHandler(handler, serviceName, opts...)
}
