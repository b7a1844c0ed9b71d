package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	router "github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/karrick/tparse/v2"
	"github.com/plgd-dev/assethub/asset-gateway/uri"
	"github.com/plgd-dev/assethub/binding"
	"github.com/plgd-dev/assethub/history"
	"github.com/plgd-dev/assethub/lifecycle"
	mappingStore "github.com/plgd-dev/assethub/mapping/store"
	"github.com/plgd-dev/assethub/pkg/log"
	pkgHttp "github.com/plgd-dev/assethub/pkg/net/http"
	pkgStrings "github.com/plgd-dev/assethub/pkg/strings"
	"github.com/plgd-dev/assethub/query"
	telemetryStore "github.com/plgd-dev/assethub/telemetry/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errInvalidParameter = errors.New("invalid parameter")

const (
	defaultHistoryRange = "now-24h"
	defaultCadence      = time.Hour
	maxBodySize         = 16 << 20
)

type BindingResolver interface {
	Resolve(ctx context.Context, assetID, attributeID string) (binding.Binding, error)
}

// RequestHandler for handling incoming request
type RequestHandler struct {
	resolver  BindingResolver
	mappings  mappingStore.Store
	query     *query.Service
	history   *history.Service
	lifecycle *lifecycle.ReconcileService
	gatherer  prometheus.Gatherer
	logger    log.Logger
}

func NewRequestHandler(resolver BindingResolver, mappings mappingStore.Store, querySvc *query.Service, historySvc *history.Service, lifecycleSvc *lifecycle.ReconcileService, gatherer prometheus.Gatherer, logger log.Logger) *RequestHandler {
	return &RequestHandler{
		resolver:  resolver,
		mappings:  mappings,
		query:     querySvc,
		history:   historySvc,
		lifecycle: lifecycleSvc,
		gatherer:  gatherer,
		logger:    logger,
	}
}

// NewHTTP returns the router serving the API of the handler.
func NewHTTP(requestHandler *RequestHandler, logger log.Logger) http.Handler {
	r := router.NewRouter()
	r.StrictSlash(true)
	r.Use(pkgHttp.CreateLoggingMiddleware(pkgHttp.WithLogger(logger)))

	r.HandleFunc(uri.Assets, requestHandler.createAsset).Methods(http.MethodPost)
	r.HandleFunc(uri.Asset, requestHandler.deleteAsset).Methods(http.MethodDelete)
	r.HandleFunc(uri.Binding, requestHandler.getBinding).Methods(http.MethodGet)
	r.HandleFunc(uri.History, requestHandler.getHistory).Methods(http.MethodGet)
	r.HandleFunc(uri.Attributes, requestHandler.createAttribute).Methods(http.MethodPost)
	r.HandleFunc(uri.Attribute, requestHandler.deleteAttribute).Methods(http.MethodDelete)
	r.HandleFunc(uri.Mappings, requestHandler.createMapping).Methods(http.MethodPost)
	r.HandleFunc(uri.Mapping, requestHandler.deleteMapping).Methods(http.MethodDelete)
	r.HandleFunc(uri.Resources, requestHandler.queryResources).Methods(http.MethodGet)
	r.HandleFunc(uri.Resources, requestHandler.insertResources).Methods(http.MethodPost)
	r.HandleFunc(uri.Windows, requestHandler.getWindows).Methods(http.MethodGet)
	r.Handle(uri.Metrics, promhttp.HandlerFor(requestHandler.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc(uri.Healthcheck, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return r
}

// errToStatus maps the domain errors to http status codes.
func errToStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidParameter),
		errors.Is(err, mappingStore.ErrValidation),
		errors.Is(err, history.ErrInvalidArgument),
		errors.Is(err, query.ErrInvalidRequest),
		errors.Is(err, lifecycle.ErrInvalidPeriod),
		errors.Is(err, telemetryStore.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, mappingStore.ErrNotFound),
		errors.Is(err, binding.ErrUnresolvedAttribute),
		errors.Is(err, query.ErrUnknownResourceType):
		return http.StatusNotFound
	case errors.Is(err, binding.ErrCycleDetected):
		return http.StatusConflict
	case errors.Is(err, binding.ErrTransport):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (rh *RequestHandler) logAndWriteErrorResponse(w http.ResponseWriter, err error) {
	status := errToStatus(err)
	if status >= http.StatusInternalServerError {
		rh.logger.Errorf("%v", err)
	} else {
		rh.logger.Debugf("%v", err)
	}
	if err2 := pkgHttp.WriteErrorResponse(w, status, err); err2 != nil {
		rh.logger.Errorf("failed to write error response body: %v", err2)
	}
}

func (rh *RequestHandler) writeResponse(w http.ResponseWriter, status int, v interface{}) {
	if err := pkgHttp.WriteJSONResponse(w, status, v); err != nil {
		rh.logger.Errorf("failed to write response body: %v", err)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: cannot read body: %w", errInvalidParameter, err)
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: cannot decode body: %w", errInvalidParameter, err)
	}
	return nil
}

// parseTime accepts RFC3339 or a tparse expression relative to now such as now-24h.
func parseTime(key, value, def string) (time.Time, error) {
	if value == "" {
		value = def
	}
	t, err := tparse.ParseNow(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v('%v'): %w", errInvalidParameter, key, value, err)
	}
	return t.UTC(), nil
}

// parseDuration accepts a Go duration or a tparse duration such as 1d.
func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	d, err := tparse.AbsoluteDuration(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v('%v'): %w", errInvalidParameter, key, value, err)
	}
	return d, nil
}

func queryList(r *http.Request, key string) []string {
	var values []string
	for _, v := range r.URL.Query()[key] {
		values = append(values, pkgStrings.SplitList(v)...)
	}
	return pkgStrings.UniqueStable(values)
}

func pathValue(r *http.Request, key string) string {
	return strings.TrimSpace(router.Vars(r)[key])
}
